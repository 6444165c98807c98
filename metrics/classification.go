// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"github.com/YuminosukeSato/perceptron/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// BinaryConfusion は2値分類の混同行列
type BinaryConfusion struct {
	TN, FP, FN, TP int
}

// Total はサンプル数を返す
func (c BinaryConfusion) Total() int {
	return c.TN + c.FP + c.FN + c.TP
}

// Accuracy は正解率を返す。サンプルが無い場合は0
func (c BinaryConfusion) Accuracy() float64 {
	n := c.Total()
	if n == 0 {
		return 0
	}
	return float64(c.TN+c.TP) / float64(n)
}

// AccuracyScore は正解率を計算する。yTrue と yPred は n×1 の列ベクトル
func AccuracyScore(yTrue, yPred mat.Matrix) (float64, error) {
	n, err := checkColumns("AccuracyScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(n-countMismatches(yTrue, yPred, n)) / float64(n), nil
}

// Misclassified は予測が正解と一致しないサンプル数を返す（0-1損失の総和）
func Misclassified(yTrue, yPred mat.Matrix) (int, error) {
	n, err := checkColumns("Misclassified", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return countMismatches(yTrue, yPred, n), nil
}

// ConfusionMatrix は {0, 1} ラベルの混同行列を計算する
func ConfusionMatrix(yTrue, yPred mat.Matrix) (BinaryConfusion, error) {
	var c BinaryConfusion
	n, err := checkColumns("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return c, err
	}

	for i := 0; i < n; i++ {
		t, p := yTrue.At(i, 0), yPred.At(i, 0)
		if !isBinary(t) || !isBinary(p) {
			return BinaryConfusion{}, errors.NewValueError("ConfusionMatrix", "labels must be 0 or 1")
		}
		switch {
		case t == 0 && p == 0:
			c.TN++
		case t == 0 && p == 1:
			c.FP++
		case t == 1 && p == 0:
			c.FN++
		default:
			c.TP++
		}
	}
	return c, nil
}

func isBinary(v float64) bool {
	return v == 0 || v == 1
}

func countMismatches(yTrue, yPred mat.Matrix, n int) int {
	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.At(i, 0) != yPred.At(i, 0) {
			wrong++
		}
	}
	return wrong
}

// checkColumns は両方が同じ長さの空でない列ベクトルであることを検証する
func checkColumns(op string, yTrue, yPred mat.Matrix) (int, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if cTrue != 1 {
		return 0, errors.NewShapeMismatchError(op, 1, cTrue, 1)
	}
	if cPred != 1 {
		return 0, errors.NewShapeMismatchError(op, 1, cPred, 1)
	}
	if rTrue != rPred {
		return 0, errors.NewShapeMismatchError(op, rTrue, rPred, 0)
	}
	return rTrue, nil
}
