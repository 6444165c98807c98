package linear_model

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/YuminosukeSato/perceptron/core/model"
	"github.com/YuminosukeSato/perceptron/metrics"
	"github.com/YuminosukeSato/perceptron/pkg/errors"
	"github.com/YuminosukeSato/perceptron/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	defaultAlpha  = 0.01
	defaultEpochs = 10
)

// Perceptron is a single-layer linear binary classifier trained with the
// classical error-driven perceptron rule.
//
// The bias is folded into the weight vector: weights has nFeatures+1 entries
// and every input is augmented with a trailing constant 1. Weights are drawn
// once at construction and then only ever updated in place by training.
//
// A Perceptron serialises its own calls, but training is order dependent:
// feeding it from several goroutines gives an interleaving-dependent result.
// Independent Perceptrons share nothing and can be trained concurrently.
type Perceptron struct {
	state *model.StateManager

	// Hyperparameters
	alpha       float64 // learning rate; any value is accepted, including 0 and negatives
	epochs      int     // passes used by Fit
	randomState int64   // seed used for initialization, -1 when unseeded
	src         rand.Source

	// Model parameters
	nFeatures int
	weights   []float64 // nFeatures feature weights followed by the bias weight

	// Training report: updates made in each pass since the last Fit
	mistakes []int

	logger log.Logger
	mu     sync.RWMutex
}

// PerceptronOption is a functional option for Perceptron
type PerceptronOption func(*Perceptron)

// WithAlpha sets the learning rate. It is deliberately not validated: zero
// freezes the weights and a negative value trains away from the targets.
func WithAlpha(alpha float64) PerceptronOption {
	return func(p *Perceptron) {
		p.alpha = alpha
	}
}

// WithEpochs sets the number of passes Fit makes over the data.
func WithEpochs(epochs int) PerceptronOption {
	return func(p *Perceptron) {
		p.epochs = epochs
	}
}

// WithRandomState seeds weight initialization for reproducible runs.
func WithRandomState(seed int64) PerceptronOption {
	return func(p *Perceptron) {
		p.randomState = seed
		p.src = rand.NewPCG(uint64(seed), 0)
	}
}

// WithRandSource draws the initial weights from src.
func WithRandSource(src rand.Source) PerceptronOption {
	return func(p *Perceptron) {
		p.src = src
	}
}

// WithLogger sets the logger used for training and prediction records.
func WithLogger(logger log.Logger) PerceptronOption {
	return func(p *Perceptron) {
		p.logger = logger
	}
}

// NewPerceptron creates a Perceptron for nFeatures inputs.
//
// The nFeatures+1 initial weights are standard normal samples divided by
// sqrt(nFeatures), which keeps the initial pre-activations on the same scale
// whatever the input width. Without WithRandomState or WithRandSource the
// global random source is used.
func NewPerceptron(nFeatures int, opts ...PerceptronOption) (*Perceptron, error) {
	if nFeatures <= 0 {
		return nil, errors.NewInvalidDimensionError("NewPerceptron", "n_features", nFeatures)
	}

	p := &Perceptron{
		state:       model.NewStateManager(),
		alpha:       defaultAlpha,
		epochs:      defaultEpochs,
		randomState: -1,
		nFeatures:   nFeatures,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.epochs < 1 {
		return nil, errors.NewValidationError("epochs", "must be at least 1", p.epochs)
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	p.logger = p.logger.With(log.ModelNameKey, "Perceptron")

	p.initializeWeights()

	p.logger.Debug("Weights initialized",
		log.FeaturesKey, p.nFeatures,
		log.LearningRateKey, p.alpha,
		log.RandomSeedKey, p.randomState,
	)
	return p, nil
}

// initializeWeights draws nFeatures+1 weights from N(0, 1) scaled by 1/sqrt(nFeatures)
func (p *Perceptron) initializeWeights() {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: p.src}
	scale := math.Sqrt(float64(p.nFeatures))

	p.weights = make([]float64, p.nFeatures+1)
	for i := range p.weights {
		p.weights[i] = normal.Rand() / scale
	}
}

// Fit trains for the configured number of epochs (10 unless WithEpochs was given).
func (p *Perceptron) Fit(X, y mat.Matrix) error {
	return p.FitEpochs(X, y, p.epochs)
}

// FitEpochs makes exactly epochs passes over the rows of X in order.
//
// For each row x with target t, the augmented input x̂ = [x, 1] is classified
// as Step(w·x̂) and, when that differs from t, the weights are updated right
// away:
//
//	w ← w − alpha·(pred − t)·x̂
//
// There is no convergence check; all epochs always run. Shapes are checked
// before anything is touched, so a failed call leaves the weights unchanged.
// Training continues from the current weights rather than reinitialising.
func (p *Perceptron) FitEpochs(X, y mat.Matrix, epochs int) (err error) {
	defer errors.Recover(&err, "Perceptron.Fit")

	if epochs < 1 {
		return errors.NewValidationError("epochs", "must be at least 1", epochs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.checkTrainingData("Fit", X, y)
	if err != nil {
		p.logger.Error("Fit rejected input", err, log.OperationKey, log.OperationFit)
		return err
	}

	logger := p.logger.With(log.OperationKey, log.OperationFit)
	logger.Info("Training started",
		log.SamplesKey, rows,
		log.FeaturesKey, p.nFeatures,
		log.EpochsKey, epochs,
		log.LearningRateKey, p.alpha,
	)
	start := time.Now()

	p.mistakes = make([]int, 0, epochs)
	p.train(logger, X, y, rows, epochs)

	p.state.SetDimensions(p.nFeatures, rows)
	p.state.AddEpochs(epochs)
	p.state.SetFitted()

	logger.Info("Training completed",
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.MistakesKey, p.mistakes[len(p.mistakes)-1],
	)
	return nil
}

// PartialFit makes a single pass over the given samples, continuing from the
// current weights. classes may be nil; otherwise every entry must be 0 or 1.
func (p *Perceptron) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "Perceptron.PartialFit")

	for _, c := range classes {
		if c != 0 && c != 1 {
			return errors.NewValidationError("classes", "binary classifier accepts only 0 and 1", classes)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.checkTrainingData("PartialFit", X, y)
	if err != nil {
		p.logger.Error("PartialFit rejected input", err, log.OperationKey, log.OperationPartialFit)
		return err
	}

	p.train(p.logger.With(log.OperationKey, log.OperationPartialFit), X, y, rows, 1)

	_, seen := p.state.GetDimensions()
	p.state.SetDimensions(p.nFeatures, seen+rows)
	p.state.AddEpochs(1)
	p.state.SetFitted()
	return nil
}

// train runs the passes and records how many updates each one made.
// The caller holds the write lock and has validated the shapes.
func (p *Perceptron) train(logger log.Logger, X, y mat.Matrix, rows, epochs int) {
	x := make([]float64, p.nFeatures+1)
	warned := false

	for epoch := 1; epoch <= epochs; epoch++ {
		mistakes := 0
		for i := 0; i < rows; i++ {
			mat.Row(x[:p.nFeatures], i, X)
			x[p.nFeatures] = 1
			if p.update(x, y.At(i, 0)) {
				mistakes++
			}
		}
		p.mistakes = append(p.mistakes, mistakes)

		logger.Debug("Epoch finished", log.EpochKey, epoch, log.MistakesKey, mistakes)

		if !warned {
			if werr := errors.CheckNumericalStability("weight_update", p.weights, epoch); werr != nil {
				errors.Warn(werr)
				warned = true
			}
		}
	}
}

// update applies the perceptron rule for one augmented sample and reports
// whether the weights changed.
func (p *Perceptron) update(x []float64, target float64) bool {
	pred := float64(activate(p.weights, x))
	if pred == target {
		return false
	}
	floats.AddScaled(p.weights, -p.alpha*(pred-target), x)
	return true
}

// checkTrainingData validates X (rows×nFeatures) against y (rows×1).
func (p *Perceptron) checkTrainingData(op string, X, y mat.Matrix) (int, error) {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if cols != p.nFeatures {
		return 0, errors.NewShapeMismatchError(op, p.nFeatures, cols, 1)
	}
	if yCols != 1 {
		return 0, errors.NewShapeMismatchError(op, 1, yCols, 1)
	}
	if yRows != rows {
		return 0, errors.NewShapeMismatchError(op, rows, yRows, 0)
	}
	return rows, nil
}

// Predict returns an n×1 matrix of 0/1 labels for the rows of X, which must
// have nFeatures columns. It does not require a prior Fit.
func (p *Perceptron) Predict(X mat.Matrix) (mat.Matrix, error) {
	return p.PredictBias(X, true)
}

// PredictBias is Predict with control over augmentation. With addBias false
// the rows of X must already carry the bias input, i.e. nFeatures+1 columns.
func (p *Perceptron) PredictBias(X mat.Matrix, addBias bool) (mat.Matrix, error) {
	z, err := p.decision("Predict", X, addBias)
	if err != nil {
		return nil, err
	}

	labels := mat.NewDense(len(z), 1, nil)
	for i, v := range z {
		labels.Set(i, 0, float64(Step(v)))
	}

	p.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(z),
	)
	return labels, nil
}

// PredictOne classifies a single vector. x has nFeatures entries when
// addBias is true and nFeatures+1 otherwise.
func (p *Perceptron) PredictOne(x []float64, addBias bool) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	want := p.inputWidth(addBias)
	if len(x) != want {
		return 0, errors.NewShapeMismatchError("PredictOne", want, len(x), 1)
	}
	if !addBias {
		return activate(p.weights, x), nil
	}
	return activate(p.weights, augment(make([]float64, want+1), x)), nil
}

// DecisionFunction returns the pre-activation w·[x, 1] for every row of X.
func (p *Perceptron) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	z, err := p.decision("DecisionFunction", X, true)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(z), 1, z), nil
}

func (p *Perceptron) decision(op string, X mat.Matrix, addBias bool) ([]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rows, cols := X.Dims()
	want := p.inputWidth(addBias)
	if cols != want {
		err := errors.NewShapeMismatchError(op, want, cols, 1)
		p.logger.Error("Prediction rejected input", err, log.OperationKey, log.OperationPredict)
		return nil, err
	}
	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	x := make([]float64, p.nFeatures+1)
	z := make([]float64, rows)
	for i := 0; i < rows; i++ {
		mat.Row(x[:cols], i, X)
		if addBias {
			x[p.nFeatures] = 1
		}
		z[i] = floats.Dot(p.weights, x)
	}
	return z, nil
}

func (p *Perceptron) inputWidth(addBias bool) int {
	if addBias {
		return p.nFeatures
	}
	return p.nFeatures + 1
}

// Score returns the mean accuracy of Predict(X) against y.
func (p *Perceptron) Score(X, y mat.Matrix) (float64, error) {
	preds, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	acc, err := metrics.AccuracyScore(y, preds)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("Score computed", log.OperationKey, log.OperationScore, log.AccuracyKey, acc)
	return acc, nil
}

// Classes returns the labels the perceptron predicts.
func (p *Perceptron) Classes() []int {
	return []int{0, 1}
}

// Weights returns a copy of all nFeatures+1 weights, bias last.
func (p *Perceptron) Weights() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	w := make([]float64, len(p.weights))
	copy(w, p.weights)
	return w
}

// Coef returns a copy of the feature weights, excluding the bias.
func (p *Perceptron) Coef() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	w := make([]float64, p.nFeatures)
	copy(w, p.weights[:p.nFeatures])
	return w
}

// Intercept returns the bias weight.
func (p *Perceptron) Intercept() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.weights[p.nFeatures]
}

// Alpha returns the learning rate.
func (p *Perceptron) Alpha() float64 {
	return p.alpha
}

// NFeatures returns the number of input features, excluding the bias input.
func (p *Perceptron) NFeatures() int {
	return p.nFeatures
}

// MistakesPerEpoch returns how many weight updates each pass made since the
// last Fit, including passes added by PartialFit.
func (p *Perceptron) MistakesPerEpoch() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]int, len(p.mistakes))
	copy(out, p.mistakes)
	return out
}

// NIter returns the total number of passes made over training data.
func (p *Perceptron) NIter() int {
	return p.state.Epochs()
}

// IsFitted reports whether Fit or PartialFit has completed at least once.
func (p *Perceptron) IsFitted() bool {
	return p.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (p *Perceptron) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":        p.alpha,
		"epochs":       p.epochs,
		"n_features":   p.nFeatures,
		"random_state": p.randomState,
	}
}

var (
	_ model.OnlineClassifier = (*Perceptron)(nil)
	_ model.LinearModel      = (*Perceptron)(nil)
	_ model.ParameterGetter  = (*Perceptron)(nil)
)
