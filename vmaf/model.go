package vmaf

import (
	"errors"
	"fmt"
)

// ModelID selects one of the built-in model constant tables.
type ModelID string

// The four selectable models. They share the same feature extractors and
// differ only in their constant tables, whether the phone score transform
// runs, and the enhancement-gain limit used inside VIF and ADM2.
const (
	ModelHD    ModelID = "hd"
	ModelPhone ModelID = "phone"
	Model4K    ModelID = "4k"
	ModelNEG   ModelID = "neg"
)

// ErrUnknownModel is returned by Lookup for an unrecognized model id.
var ErrUnknownModel = errors.New("vmaf: unknown model id")

// Transform holds the quadratic score transform coefficients applied by
// the phone model: out = P0 + P1*score + P2*score^2, rectified to be no
// lower than the untransformed score.
type Transform struct {
	P0, P1, P2 float64
}

// Model is an immutable set of regression constants for one model id.
// Instances are shared read-only assets loaded once per process; nothing
// re-parses them per frame.
type Model struct {
	ID ModelID

	// Nu-SVR dual form: support vectors in normalized feature space with
	// their dual coefficients, RBF kernel width and offset.
	SupportVectors [][]float64
	Coeffs         []float64
	Gamma          float64
	Rho            float64

	// Per-feature linear normalization applied to the raw feature vector
	// [adm2, motion2, vif0, vif1, vif2, vif3] before kernel evaluation.
	Slopes     [featureCount]float64
	Intercepts [featureCount]float64

	// Denormalization of the kernel sum into the 0-100 score range.
	ScoreSlope     float64
	ScoreIntercept float64

	// Transform is non-nil only for the phone model.
	Transform *Transform

	// EnhnGainLimit caps enhancement gain in VIF and ADM2: 100 for the
	// standard models, 1.0 for neg.
	EnhnGainLimit float64
}

// featureCount is the length of the regression feature vector.
const featureCount = 6

var baseSupportVectors = [][]float64{
	{1.00, 0.00, 1.00, 1.00, 1.00, 1.00},
	{0.92, 0.05, 0.94, 0.93, 0.92, 0.93},
	{0.55, 0.20, 0.82, 0.70, 0.60, 0.55},
	{0.20, 0.40, 0.77, 0.55, 0.38, 0.30},
}

var baseCoeffs = []float64{1.0, 0.15, -0.2, -0.5}

var baseSlopes = [featureCount]float64{1.0, 0.04, 0.25, 0.5, 0.7, 0.8}

var baseIntercepts = [featureCount]float64{0, 0, 0.75, 0.5, 0.3, 0.2}

// models is the registry of built-in constant tables, constructed once at
// package load.
var models = map[ModelID]*Model{
	ModelHD: {
		ID:             ModelHD,
		SupportVectors: baseSupportVectors,
		Coeffs:         baseCoeffs,
		Gamma:          1.0,
		Rho:            0,
		Slopes:         baseSlopes,
		Intercepts:     baseIntercepts,
		ScoreSlope:     185.0,
		ScoreIntercept: -81.4,
		EnhnGainLimit:  100,
	},
	ModelPhone: {
		ID:             ModelPhone,
		SupportVectors: baseSupportVectors,
		Coeffs:         baseCoeffs,
		Gamma:          1.0,
		Rho:            0,
		Slopes:         baseSlopes,
		Intercepts:     baseIntercepts,
		ScoreSlope:     185.0,
		ScoreIntercept: -81.4,
		Transform:      &Transform{P0: 1.70674692, P1: 1.72643844, P2: -0.00705305},
		EnhnGainLimit:  100,
	},
	Model4K: {
		ID:             Model4K,
		SupportVectors: baseSupportVectors,
		Coeffs:         baseCoeffs,
		Gamma:          1.05,
		Rho:            0,
		Slopes:         baseSlopes,
		Intercepts:     baseIntercepts,
		ScoreSlope:     190.0,
		ScoreIntercept: -86.5,
		EnhnGainLimit:  100,
	},
	ModelNEG: {
		ID:             ModelNEG,
		SupportVectors: baseSupportVectors,
		Coeffs:         baseCoeffs,
		Gamma:          1.0,
		Rho:            0,
		Slopes:         baseSlopes,
		Intercepts:     baseIntercepts,
		ScoreSlope:     185.0,
		ScoreIntercept: -81.4,
		EnhnGainLimit:  1.0,
	},
}

// Lookup returns the shared read-only model for the given id.
func Lookup(id ModelID) (*Model, error) {
	m, ok := models[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return m, nil
}

// ModelIDs lists the selectable model ids in stable order.
func ModelIDs() []ModelID {
	return []ModelID{ModelHD, ModelPhone, Model4K, ModelNEG}
}
