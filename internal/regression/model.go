package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// KindLinear is the only artifact kind currently understood.
const KindLinear = "linear"

var (
	// ErrFeatureWidth is returned when an input row does not match the model's feature count.
	ErrFeatureWidth = errors.New("feature count mismatch")

	errNoCoefficients = errors.New("model has no coefficients")
)

// Artifact is the on-disk form of a fitted model.
type Artifact struct {
	Kind         string    `json:"kind"`
	Features     []string  `json:"features,omitempty"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LinearModel predicts intercept + sum(coef[i] * x[i]).
type LinearModel struct {
	intercept    float64
	coefficients []float64
}

// NewLinearModel builds a model from explicit parameters.
func NewLinearModel(intercept float64, coefficients ...float64) (*LinearModel, error) {
	if len(coefficients) == 0 {
		return nil, errNoCoefficients
	}
	c := make([]float64, len(coefficients))
	copy(c, coefficients)
	return &LinearModel{intercept: intercept, coefficients: c}, nil
}

// Load reads a model artifact from path.
func Load(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return m, nil
}

// Decode parses a JSON model artifact.
func Decode(r io.Reader) (*LinearModel, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, err
	}
	if a.Kind != "" && a.Kind != KindLinear {
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	if len(a.Features) > 0 && len(a.Features) != len(a.Coefficients) {
		return nil, fmt.Errorf("%w: %d feature names for %d coefficients",
			ErrFeatureWidth, len(a.Features), len(a.Coefficients))
	}
	return NewLinearModel(a.Intercept, a.Coefficients...)
}

// Width returns the number of input features.
func (m *LinearModel) Width() int {
	return len(m.coefficients)
}

// Predict returns one estimate per feature row.
func (m *LinearModel) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.coefficients) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				ErrFeatureWidth, i, len(row), len(m.coefficients))
		}
		y := m.intercept
		for j, x := range row {
			y += m.coefficients[j] * x
		}
		out[i] = y
	}
	return out, nil
}
