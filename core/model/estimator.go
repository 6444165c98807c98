// Package model は推定器が満たすインターフェースと共通の状態管理を提供する
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Coef は特徴量ごとの重みを返す（バイアスを除く）
	Coef() []float64
	// Intercept はバイアス重みを返す
	Intercept() float64
}
