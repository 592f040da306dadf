package scaling

import (
	"fmt"
)

// Spec is the serialized form of a fitted scaler.
//
// A standard scaler uses Mean and Scale. A min-max scaler uses either Min and
// Scale, or DataMin and DataMax with an optional FeatureRange (default [0, 1]).
type Spec struct {
	Kind         Kind      `json:"type" yaml:"type"`
	FeatureNames []string  `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Mean         []float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Min          []float64 `json:"min,omitempty" yaml:"min,omitempty"`
	DataMin      []float64 `json:"data_min,omitempty" yaml:"data_min,omitempty"`
	DataMax      []float64 `json:"data_max,omitempty" yaml:"data_max,omitempty"`
	FeatureRange []float64 `json:"feature_range,omitempty" yaml:"feature_range,omitempty"`
}

// New creates a scaler based on spec.Kind
func New(spec Spec) (Scaler, error) {
	switch spec.Kind {
	case KindStandard:
		return NewStandardScaler(spec.Mean, spec.Scale, spec.FeatureNames)
	case KindMinMax:
		if len(spec.Min) > 0 || len(spec.Scale) > 0 {
			return NewMinMaxScaler(spec.Min, spec.Scale, spec.FeatureNames)
		}
		lo, hi := 0.0, 1.0
		switch len(spec.FeatureRange) {
		case 0:
		case 2:
			lo, hi = spec.FeatureRange[0], spec.FeatureRange[1]
		default:
			return nil, fmt.Errorf("minmax scaler: feature_range needs 2 values, got %d", len(spec.FeatureRange))
		}
		if len(spec.DataMin) == 0 {
			return nil, fmt.Errorf("minmax scaler: either min/scale or data_min/data_max is required")
		}
		return NewMinMaxScalerFromRange(spec.DataMin, spec.DataMax, lo, hi, spec.FeatureNames)
	case "":
		return nil, fmt.Errorf("scaler type is required")
	default:
		return nil, fmt.Errorf("unsupported scaler type: %s", spec.Kind)
	}
}
