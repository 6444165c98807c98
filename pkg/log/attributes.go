// Package log defines standard attribute keys for training and inference logs.
//
// The keys follow a hierarchical naming convention ("model.name",
// "data.samples") so that log pipelines can filter on them.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "Perceptron".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific model instance, useful when several
	// independent units are trained side by side.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "partial_fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns, excluding the bias column.
	FeaturesKey = "data.features"
)

// Training Progress and Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// MistakesKey records how many samples were misclassified (and therefore
	// triggered a weight update) during one epoch.
	MistakesKey = "metrics.mistakes"

	// EpochKey records the current epoch number, starting at 1.
	EpochKey = "training.epoch"

	// EpochsKey records the total number of epochs requested.
	EpochsKey = "training.epochs"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Hyperparameters
const (
	// LearningRateKey records the perceptron learning rate (alpha).
	LearningRateKey = "hyperparams.learning_rate"

	// RandomSeedKey records the random seed used for weight initialization.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationPartialFit = "partial_fit"
	OperationPredict    = "predict"
	OperationScore      = "score"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorShapeMismatch    = "SHAPE_MISMATCH"
	ErrorInvalidDimension = "INVALID_DIMENSION"
	ErrorInvalidInput     = "INVALID_INPUT"
	ErrorNumerical        = "NUMERICAL_INSTABILITY"
)
