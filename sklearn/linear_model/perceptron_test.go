package linear_model

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/YuminosukeSato/perceptron/core/parallel"
	"github.com/YuminosukeSato/perceptron/pkg/errors"
	"github.com/YuminosukeSato/perceptron/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// truth tables over two binary inputs
var (
	gateInputs = mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	andLabels = mat.NewVecDense(4, []float64{0, 0, 0, 1})
	orLabels  = mat.NewVecDense(4, []float64{0, 1, 1, 1})
	xorLabels = mat.NewVecDense(4, []float64{0, 1, 1, 0})
)

func quietLogger() log.Logger {
	l, _ := log.NewTestLogger(log.LevelError)
	return l
}

func newTestPerceptron(t *testing.T, nFeatures int, opts ...PerceptronOption) *Perceptron {
	t.Helper()
	opts = append([]PerceptronOption{WithLogger(quietLogger())}, opts...)
	p, err := NewPerceptron(nFeatures, opts...)
	require.NoError(t, err)
	return p
}

// withWeights overwrites the initial weights so a test can follow the
// updates exactly.
func withWeights(p *Perceptron, w ...float64) *Perceptron {
	p.weights = append([]float64(nil), w...)
	return p
}

func TestNewPerceptronWeightLength(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 784} {
		p := newTestPerceptron(t, n, WithRandomState(int64(n)))
		assert.Len(t, p.Weights(), n+1, "n=%d", n)
		assert.Len(t, p.Coef(), n)
		assert.Equal(t, n, p.NFeatures())
		assert.False(t, p.IsFitted())
	}
}

func TestNewPerceptronInvalidDimension(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		p, err := NewPerceptron(n, WithLogger(quietLogger()))
		assert.Nil(t, p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidDimension), "n=%d", n)

		var dimErr *errors.InvalidDimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, n, dimErr.Value)
	}
}

func TestNewPerceptronDefaults(t *testing.T) {
	p := newTestPerceptron(t, 3)

	assert.Equal(t, 0.01, p.Alpha())
	assert.Equal(t, map[string]interface{}{
		"alpha":        0.01,
		"epochs":       10,
		"n_features":   3,
		"random_state": int64(-1),
	}, p.GetParams())
	assert.Equal(t, []int{0, 1}, p.Classes())
}

func TestNewPerceptronRejectsNonPositiveEpochs(t *testing.T) {
	_, err := NewPerceptron(2, WithEpochs(0), WithLogger(quietLogger()))

	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "epochs", valErr.ParamName)
}

func TestNewPerceptronAcceptsAnyAlpha(t *testing.T) {
	for _, alpha := range []float64{0, -0.5, 1e6} {
		p := newTestPerceptron(t, 2, WithAlpha(alpha))
		assert.Equal(t, alpha, p.Alpha())
	}
}

func TestInitializationIsScaledStandardNormal(t *testing.T) {
	const n = 4
	p := newTestPerceptron(t, n, WithRandSource(rand.NewPCG(7, 11)))

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(7, 11)}
	want := make([]float64, n+1)
	for i := range want {
		want[i] = normal.Rand() / math.Sqrt(n)
	}
	assert.Equal(t, want, p.Weights())
}

func TestInitializationIsReproducible(t *testing.T) {
	a := newTestPerceptron(t, 5, WithRandomState(42))
	b := newTestPerceptron(t, 5, WithRandomState(42))
	c := newTestPerceptron(t, 5, WithRandomState(43))

	assert.Equal(t, a.Weights(), b.Weights())
	assert.NotEqual(t, a.Weights(), c.Weights())
}

func TestStep(t *testing.T) {
	tests := []struct {
		name string
		z    float64
		want int
	}{
		{name: "zero", z: 0, want: 0},
		{name: "negative zero", z: math.Copysign(0, -1), want: 0},
		{name: "smallest positive", z: math.SmallestNonzeroFloat64, want: 1},
		{name: "smallest negative", z: -math.SmallestNonzeroFloat64, want: 0},
		{name: "positive", z: 0.3, want: 1},
		{name: "negative", z: -2, want: 0},
		{name: "+Inf", z: math.Inf(1), want: 1},
		{name: "NaN", z: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Step(tt.z))
		})
	}
}

func TestUpdateRuleIsExact(t *testing.T) {
	tests := []struct {
		name   string
		x      []float64
		target float64
	}{
		// w·[1,2,1] = 0.125 > 0 predicts 1
		{name: "false positive", x: []float64{1, 2}, target: 0},
		// w·[-1,0,1] = -0.375 predicts 0
		{name: "false negative", x: []float64{-1, 0}, target: 1},
		{name: "correct positive", x: []float64{1, 2}, target: 1},
		{name: "correct negative", x: []float64{-1, 0}, target: 0},
	}

	const alpha = 0.25
	initial := []float64{0.5, -0.25, 0.125}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := withWeights(newTestPerceptron(t, 2, WithAlpha(alpha)), initial...)

			aug := append(append([]float64(nil), tt.x...), 1)
			z := 0.0
			for i := range aug {
				z += initial[i] * aug[i]
			}
			pred := float64(Step(z))
			want := make([]float64, len(initial))
			for i := range want {
				want[i] = initial[i] - alpha*(pred-tt.target)*aug[i]
			}

			X := mat.NewDense(1, 2, tt.x)
			y := mat.NewVecDense(1, []float64{tt.target})
			require.NoError(t, p.PartialFit(X, y, nil))

			assert.Equal(t, want, p.Weights())
			if pred == tt.target {
				assert.Equal(t, initial, p.Weights(), "correct prediction must not move the weights")
				assert.Equal(t, []int{0}, p.MistakesPerEpoch())
			} else {
				assert.Equal(t, []int{1}, p.MistakesPerEpoch())
			}
		})
	}
}

func TestUpdatesAreSequential(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 1, WithAlpha(0.5)), 0.25, 0)

	// Row 1: w·[1,1] = 0.25 predicts 1, target 0, so w becomes [-0.25, -0.5].
	// Row 2 sees the updated weights: w·[1,1] = -0.75 predicts 0, target 0, no update.
	// A batched rule would apply the first error twice.
	X := mat.NewDense(2, 1, []float64{1, 1})
	y := mat.NewVecDense(2, []float64{0, 0})

	require.NoError(t, p.FitEpochs(X, y, 1))
	assert.Equal(t, []float64{-0.25, -0.5}, p.Weights())
	assert.Equal(t, []int{1}, p.MistakesPerEpoch())
}

func TestFitRunsEveryEpoch(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2, WithAlpha(0.1), WithEpochs(7)), 0, 0, 0)

	require.NoError(t, p.Fit(gateInputs, orLabels))

	mistakes := p.MistakesPerEpoch()
	require.Len(t, mistakes, 7)
	assert.Equal(t, 0, mistakes[len(mistakes)-1])
	assert.Equal(t, 7, p.NIter())
	assert.True(t, p.IsFitted())
}

func TestSeparableGatesConverge(t *testing.T) {
	inits := [][]float64{
		{0, 0, 0},
		{0.5, -0.5, 0.25},
		{0.25, 0.25, -0.125},
		{1.0, -1.0, 0.75},
		{-0.25, 0.75, 0.5},
		{0.75, 0.5, -1.0},
	}
	gates := []struct {
		name   string
		labels *mat.VecDense
	}{
		{name: "AND", labels: andLabels},
		{name: "OR", labels: orLabels},
	}

	for _, gate := range gates {
		for _, start := range inits {
			p := withWeights(newTestPerceptron(t, 2, WithAlpha(0.1)), start...)
			require.NoError(t, p.FitEpochs(gateInputs, gate.labels, 20))

			preds, err := p.Predict(gateInputs)
			require.NoError(t, err)
			assert.True(t, mat.Equal(gate.labels, preds), "%s from %v: got %v", gate.name, start, mat.Formatted(preds.T()))

			score, err := p.Score(gateInputs, gate.labels)
			require.NoError(t, err)
			assert.Equal(t, 1.0, score)
		}
	}
}

func TestSeparableGatesConvergeFromRandomInit(t *testing.T) {
	const trials = 200

	for _, labels := range []*mat.VecDense{andLabels, orLabels} {
		var solved int64
		parallel.ForEach(trials, func(i int) {
			p, err := NewPerceptron(2, WithAlpha(0.1), WithRandomState(int64(i)), WithLogger(quietLogger()))
			if err != nil {
				return
			}
			if err := p.FitEpochs(gateInputs, labels, 20); err != nil {
				return
			}
			if score, err := p.Score(gateInputs, labels); err == nil && score == 1 {
				atomic.AddInt64(&solved, 1)
			}
		})
		assert.Greater(t, solved, int64(trials*8/10))
	}
}

func TestXORDoesNotConverge(t *testing.T) {
	const trials = 50

	var unsolved int64
	parallel.ForEach(trials, func(i int) {
		p, err := NewPerceptron(2, WithAlpha(0.1), WithRandomState(int64(i)), WithLogger(quietLogger()))
		if err != nil {
			return
		}
		if err := p.FitEpochs(gateInputs, xorLabels, 100); err != nil {
			return
		}
		if score, err := p.Score(gateInputs, xorLabels); err == nil && score < 1 {
			atomic.AddInt64(&unsolved, 1)
		}
	})

	assert.Greater(t, unsolved, int64(trials/2))
}

func TestXORKeepsMakingMistakes(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2, WithAlpha(0.1)), 0, 0, 0)
	require.NoError(t, p.FitEpochs(gateInputs, xorLabels, 20))

	for epoch, mistakes := range p.MistakesPerEpoch() {
		assert.Positive(t, mistakes, "epoch %d", epoch+1)
	}
}

func TestFitShapeMismatchLeavesWeightsUnchanged(t *testing.T) {
	tests := []struct {
		name string
		X    mat.Matrix
		y    mat.Matrix
		axis int
	}{
		{name: "too many features", X: mat.NewDense(4, 3, nil), y: mat.NewVecDense(4, nil), axis: 1},
		{name: "too few features", X: mat.NewDense(4, 1, nil), y: mat.NewVecDense(4, nil), axis: 1},
		{name: "fewer labels than rows", X: gateInputs, y: mat.NewVecDense(3, nil), axis: 0},
		{name: "more labels than rows", X: gateInputs, y: mat.NewVecDense(5, nil), axis: 0},
		{name: "label matrix has two columns", X: gateInputs, y: mat.NewDense(4, 2, nil), axis: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPerceptron(t, 2, WithRandomState(1))
			before := p.Weights()

			err := p.Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

			var shapeErr *errors.ShapeMismatchError
			require.True(t, errors.As(err, &shapeErr))
			assert.Equal(t, tt.axis, shapeErr.Axis)

			assert.Equal(t, before, p.Weights())
			assert.False(t, p.IsFitted())

			err = p.PartialFit(tt.X, tt.y, nil)
			assert.True(t, errors.Is(err, errors.ErrShapeMismatch))
			assert.Equal(t, before, p.Weights())
		})
	}
}

func TestFitEpochsRejectsNonPositive(t *testing.T) {
	p := newTestPerceptron(t, 2, WithRandomState(1))
	before := p.Weights()

	for _, epochs := range []int{0, -3} {
		var valErr *errors.ValidationError
		assert.True(t, errors.As(p.FitEpochs(gateInputs, andLabels, epochs), &valErr))
	}
	assert.Equal(t, before, p.Weights())
}

func TestPartialFitClasses(t *testing.T) {
	p := newTestPerceptron(t, 2, WithRandomState(3))

	require.NoError(t, p.PartialFit(gateInputs, andLabels, []int{0, 1}))
	require.NoError(t, p.PartialFit(gateInputs, andLabels, nil))
	assert.Len(t, p.MistakesPerEpoch(), 2)
	assert.Equal(t, 2, p.NIter())

	var valErr *errors.ValidationError
	assert.True(t, errors.As(p.PartialFit(gateInputs, andLabels, []int{0, 2}), &valErr))
}

func TestFitResetsMistakeHistoryButNotWeights(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2, WithAlpha(0.1)), 0, 0, 0)

	require.NoError(t, p.FitEpochs(gateInputs, andLabels, 20))
	trained := p.Weights()

	// already separated: another round is a no-op on the weights
	require.NoError(t, p.FitEpochs(gateInputs, andLabels, 3))
	assert.Equal(t, trained, p.Weights())
	assert.Equal(t, []int{0, 0, 0}, p.MistakesPerEpoch())
	assert.Equal(t, 23, p.NIter())
}

func TestZeroAlphaFreezesWeights(t *testing.T) {
	p := newTestPerceptron(t, 2, WithAlpha(0), WithRandomState(5))
	before := p.Weights()

	require.NoError(t, p.FitEpochs(gateInputs, xorLabels, 5))
	assert.Equal(t, before, p.Weights())
}

func TestPredictBias(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2), 1, -1, -0.5)

	preds, err := p.Predict(gateInputs)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0}, mat.Col(nil, 0, preds))

	augmented := mat.NewDense(4, 3, []float64{
		0, 0, 1,
		0, 1, 1,
		1, 0, 1,
		1, 1, 1,
	})
	raw, err := p.PredictBias(augmented, false)
	require.NoError(t, err)
	assert.True(t, mat.Equal(preds, raw))

	// without augmentation the caller controls the bias input
	noBias := mat.NewDense(1, 3, []float64{1, 0, 0})
	raw, err = p.PredictBias(noBias, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, raw.At(0, 0))
}

func TestPredictZeroPreActivationIsNegative(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2), 1, -1, 0)

	got, err := p.PredictOne([]float64{2, 2}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	z, err := p.DecisionFunction(mat.NewDense(2, 2, []float64{2, 2, 3, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, mat.Col(nil, 0, z))
}

func TestPredictOne(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2), 0.5, 0.5, -0.75)

	got, err := p.PredictOne([]float64{1, 1}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = p.PredictOne([]float64{1, 0, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestPredictShapeMismatch(t *testing.T) {
	p := newTestPerceptron(t, 2, WithRandomState(9))
	before := p.Weights()

	_, err := p.PredictBias(mat.NewDense(2, 3, nil), true)
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	_, err = p.PredictBias(mat.NewDense(2, 2, nil), false)
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	_, err = p.PredictOne([]float64{1, 2, 3}, true)
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	_, err = p.PredictOne([]float64{1, 2}, false)
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	_, err = p.DecisionFunction(mat.NewDense(1, 1, nil))
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	_, err = p.Score(gateInputs, mat.NewVecDense(3, nil))
	assert.True(t, errors.Is(err, errors.ErrShapeMismatch))

	assert.Equal(t, before, p.Weights())
}

func TestPredictDoesNotMutate(t *testing.T) {
	p := newTestPerceptron(t, 2, WithRandomState(10))
	before := p.Weights()

	_, err := p.Predict(gateInputs)
	require.NoError(t, err)
	_, err = p.PredictOne([]float64{1, 1}, true)
	require.NoError(t, err)

	assert.Equal(t, before, p.Weights())
	assert.False(t, p.IsFitted())
}

func TestAccessorsReturnCopies(t *testing.T) {
	p := withWeights(newTestPerceptron(t, 2), 1, 2, 3)

	w := p.Weights()
	w[0] = 100
	c := p.Coef()
	c[1] = 100

	assert.Equal(t, []float64{1, 2, 3}, p.Weights())
	assert.Equal(t, []float64{1, 2}, p.Coef())
	assert.Equal(t, 3.0, p.Intercept())
}

func TestNonFiniteWeightsRaiseWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(w error) {})

	p := withWeights(newTestPerceptron(t, 2, WithAlpha(math.Inf(1))), 0, 0, 0)
	require.NoError(t, p.FitEpochs(gateInputs, xorLabels, 3))

	require.Len(t, warnings, 1)
	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As(warnings[0], &numErr))
}

func TestFitLogsProgress(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	p, err := NewPerceptron(2, WithLogger(logger), WithAlpha(0.1), WithRandomState(2))
	require.NoError(t, err)

	require.NoError(t, p.FitEpochs(gateInputs, orLabels, 3))

	assert.True(t, logger.ContainsMessage("Training started"))
	assert.True(t, logger.ContainsMessage("Training completed"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "Perceptron"))
	assert.True(t, logger.ContainsField(log.EpochKey, 3.0))
	assert.True(t, logger.ContainsField(log.SamplesKey, 4.0))

	logger.Clear()
	_, err = p.Predict(mat.NewDense(1, 5, nil))
	require.Error(t, err)
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationPredict))
}

func TestIndependentUnitsTrainConcurrently(t *testing.T) {
	const units = 8

	sequential := make([][]float64, units)
	for i := 0; i < units; i++ {
		p := newTestPerceptron(t, 2, WithAlpha(0.1), WithRandomState(int64(100+i)))
		require.NoError(t, p.FitEpochs(gateInputs, andLabels, 20))
		sequential[i] = p.Weights()
	}

	concurrent := make([][]float64, units)
	parallel.ForEach(units, func(i int) {
		p, err := NewPerceptron(2, WithAlpha(0.1), WithRandomState(int64(100+i)), WithLogger(quietLogger()))
		if err != nil {
			return
		}
		if err := p.FitEpochs(gateInputs, andLabels, 20); err != nil {
			return
		}
		concurrent[i] = p.Weights()
	})

	assert.Equal(t, sequential, concurrent)
}

// noRows is a matrix with columns but no rows, which mat.Dense cannot represent.
type noRows struct{ cols int }

func (m noRows) Dims() (int, int) { return 0, m.cols }
func (m noRows) At(i, j int) float64 { panic(mat.ErrIndexOutOfRange) }
func (m noRows) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func TestPredictEmptyInput(t *testing.T) {
	p := newTestPerceptron(t, 2, WithRandomState(4))

	_, err := p.Predict(noRows{cols: 2})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = p.DecisionFunction(noRows{cols: 2})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
