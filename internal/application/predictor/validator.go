package predictor

import (
	"fmt"
	"math"
)

// FeatureError reports a request feature vector that does not fit the model
// schema. It is the caller's fault and maps to a client error.
type FeatureError struct {
	Expected []string
	Got      int
	// Index is the offending position, or -1 when the whole vector is wrong
	Index  int
	Reason string
}

func (e *FeatureError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("features[%d] (%s): %s", e.Index, e.featureName(), e.Reason)
	}
	return fmt.Sprintf("expected %d features, got %d", len(e.Expected), e.Got)
}

func (e *FeatureError) featureName() string {
	if e.Index < len(e.Expected) {
		return e.Expected[e.Index]
	}
	return "unknown"
}

// Validator checks feature vectors against the model schema
type Validator struct {
	names []string
}

// NewValidator creates a validator for the given ordered feature names
func NewValidator(names []string) *Validator {
	return &Validator{names: append([]string(nil), names...)}
}

// Validate checks length and that every value is a finite number
func (v *Validator) Validate(features []float64) error {
	if len(features) != len(v.names) {
		return &FeatureError{Expected: v.names, Got: len(features), Index: -1}
	}

	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &FeatureError{Expected: v.names, Got: len(features), Index: i, Reason: "must be a finite number"}
		}
	}

	return nil
}

// Resolve converts a decoded JSON array that may contain nulls into a plain
// vector, then validates it.
func (v *Validator) Resolve(raw []*float64) ([]float64, error) {
	features := make([]float64, len(raw))
	for i, f := range raw {
		if f == nil {
			return nil, &FeatureError{Expected: v.names, Got: len(raw), Index: i, Reason: "must be a number, got null"}
		}
		features[i] = *f
	}

	if err := v.Validate(features); err != nil {
		return nil, err
	}
	return features, nil
}
