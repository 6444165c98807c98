package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given samples.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// IncrementalLearner is the interface for models that support online learning.
type IncrementalLearner interface {
	// PartialFit performs one pass over the given samples without
	// reinitialising the model.
	PartialFit(X mat.Matrix, y mat.Matrix, classes []int) error
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// Classes returns the class labels the model predicts.
	Classes() []int
}

// OnlineClassifier is a classifier that also learns incrementally.
type OnlineClassifier interface {
	Classifier
	IncrementalLearner
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
