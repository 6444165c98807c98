// Package perceptron provides a single-layer linear binary classifier for Go,
// trained with the classical error-driven perceptron learning rule.
//
// The model keeps one weight per input feature plus a bias weight. Every
// input is augmented with a trailing constant 1 (the bias trick), classified
// with a step activation, and on a mistake the weights move by
//
//	w ← w − alpha·(pred − target)·[x, 1]
//
// Updates are applied immediately, sample by sample, in the order the data is
// given. There is no early stopping: training always runs every epoch.
//
// # Installation
//
//	go get github.com/YuminosukeSato/perceptron
//
// # Quick Start
//
// Learning the AND gate:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/perceptron/sklearn/linear_model"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{0, 0, 0, 1, 1, 0, 1, 1})
//	    y := mat.NewVecDense(4, []float64{0, 0, 0, 1})
//
//	    p, err := linear_model.NewPerceptron(2,
//	        linear_model.WithAlpha(0.1),
//	        linear_model.WithEpochs(20),
//	        linear_model.WithRandomState(42),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := p.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    preds, err := p.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(preds.T()))
//	}
//
// A perceptron only converges on linearly separable data. XOR, for example,
// is never learned, and MistakesPerEpoch stays above zero.
//
// # Packages
//
//   - sklearn/linear_model: Perceptron and the Step activation
//   - core/model: estimator interfaces and fitted-state tracking
//   - core/parallel: helpers for training independent models concurrently
//   - metrics: accuracy, zero-one loss and binary confusion matrix
//   - pkg/errors: error types built on cockroachdb/errors, warnings, panic recovery
//   - pkg/log: structured logging with zerolog and log/slog backends
//
// # Errors
//
// Constructors and training report problems as typed errors that also match
// sentinels:
//
//	_, err := linear_model.NewPerceptron(0)
//	errors.Is(err, errors.ErrInvalidDimension) // true
//
// Shape errors are detected before any weight is touched, so a failed Fit
// leaves the model exactly as it was.
//
// # Concurrency
//
// A single Perceptron serialises its own calls, but its training result
// depends on sample order, so it should be fed from one goroutine.
// Independent Perceptrons share nothing and can be trained in parallel with
// core/parallel.
//
// # License
//
// perceptron is released under the MIT License.
package perceptron
