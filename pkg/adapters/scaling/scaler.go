package scaling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrWidthMismatch is returned when a row does not have as many columns as
// the scaler was fitted on.
var ErrWidthMismatch = errors.New("column count does not match scaler width")

// Kind identifies a fitted scaler family
type Kind string

const (
	// KindStandard removes the mean and divides by the standard deviation
	KindStandard Kind = "standard"
	// KindMinMax maps each column linearly onto a fixed feature range
	KindMinMax Kind = "minmax"
)

// Scaler is a fitted per-column transform with a defined inverse.
//
// Implementations are immutable after construction and never modify the
// batches passed to them, so a single Scaler can serve concurrent callers.
type Scaler interface {
	Kind() Kind
	Width() int
	FeatureNames() []string
	Transform(batch [][]float64) ([][]float64, error)
	InverseTransform(batch [][]float64) ([][]float64, error)
}

// StandardScaler computes (x - mean) / scale per column
type StandardScaler struct {
	mean  []float64
	scale []float64
	names []string
}

// NewStandardScaler creates a standard scaler from fitted statistics.
// Zero entries in scale are replaced by 1 so constant training columns pass
// through unchanged.
func NewStandardScaler(mean, scale []float64, names []string) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("standard scaler: mean is required")
	}
	if len(scale) != len(mean) {
		return nil, fmt.Errorf("standard scaler: mean has %d entries but scale has %d", len(mean), len(scale))
	}
	if err := checkNames(names, len(mean)); err != nil {
		return nil, fmt.Errorf("standard scaler: %w", err)
	}
	if err := checkFinite("mean", mean); err != nil {
		return nil, fmt.Errorf("standard scaler: %w", err)
	}
	if err := checkFinite("scale", scale); err != nil {
		return nil, fmt.Errorf("standard scaler: %w", err)
	}

	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
		names: append([]string(nil), names...),
	}
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

// Kind returns KindStandard
func (s *StandardScaler) Kind() Kind { return KindStandard }

// Width returns the number of columns the scaler was fitted on
func (s *StandardScaler) Width() int { return len(s.mean) }

// FeatureNames returns the fitted column names, if the artifact declared any
func (s *StandardScaler) FeatureNames() []string { return append([]string(nil), s.names...) }

// Transform scales raw values into model space
func (s *StandardScaler) Transform(batch [][]float64) ([][]float64, error) {
	return mapRows(batch, len(s.mean), func(dst, row []float64) {
		floats.SubTo(dst, row, s.mean)
		floats.Div(dst, s.scale)
	})
}

// InverseTransform maps model-space values back to real units
func (s *StandardScaler) InverseTransform(batch [][]float64) ([][]float64, error) {
	return mapRows(batch, len(s.mean), func(dst, row []float64) {
		floats.MulTo(dst, row, s.scale)
		floats.Add(dst, s.mean)
	})
}

// MinMaxScaler computes x*scale + min per column
type MinMaxScaler struct {
	min   []float64
	scale []float64
	names []string
}

// NewMinMaxScaler creates a min-max scaler from its fitted min and scale
// vectors. Every scale entry must be non-zero for the inverse to exist.
func NewMinMaxScaler(min, scale []float64, names []string) (*MinMaxScaler, error) {
	if len(min) == 0 {
		return nil, fmt.Errorf("minmax scaler: min is required")
	}
	if len(scale) != len(min) {
		return nil, fmt.Errorf("minmax scaler: min has %d entries but scale has %d", len(min), len(scale))
	}
	if err := checkNames(names, len(min)); err != nil {
		return nil, fmt.Errorf("minmax scaler: %w", err)
	}
	if err := checkFinite("min", min); err != nil {
		return nil, fmt.Errorf("minmax scaler: %w", err)
	}
	if err := checkFinite("scale", scale); err != nil {
		return nil, fmt.Errorf("minmax scaler: %w", err)
	}
	for i, v := range scale {
		if v == 0 {
			return nil, fmt.Errorf("minmax scaler: scale[%d] is zero", i)
		}
	}

	return &MinMaxScaler{
		min:   append([]float64(nil), min...),
		scale: append([]float64(nil), scale...),
		names: append([]string(nil), names...),
	}, nil
}

// NewMinMaxScalerFromRange derives the fitted vectors from the observed data
// range and the target feature range [lo, hi]. Columns with no spread get
// scale hi-lo.
func NewMinMaxScalerFromRange(dataMin, dataMax []float64, lo, hi float64, names []string) (*MinMaxScaler, error) {
	if len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("minmax scaler: data_min has %d entries but data_max has %d", len(dataMin), len(dataMax))
	}
	if !(lo < hi) {
		return nil, fmt.Errorf("minmax scaler: invalid feature range [%g, %g]", lo, hi)
	}

	min := make([]float64, len(dataMin))
	scale := make([]float64, len(dataMin))
	for i := range dataMin {
		span := dataMax[i] - dataMin[i]
		if span == 0 {
			span = 1
		}
		scale[i] = (hi - lo) / span
		min[i] = lo - dataMin[i]*scale[i]
	}
	return NewMinMaxScaler(min, scale, names)
}

// Kind returns KindMinMax
func (s *MinMaxScaler) Kind() Kind { return KindMinMax }

// Width returns the number of columns the scaler was fitted on
func (s *MinMaxScaler) Width() int { return len(s.min) }

// FeatureNames returns the fitted column names, if the artifact declared any
func (s *MinMaxScaler) FeatureNames() []string { return append([]string(nil), s.names...) }

// Transform scales raw values into model space
func (s *MinMaxScaler) Transform(batch [][]float64) ([][]float64, error) {
	return mapRows(batch, len(s.min), func(dst, row []float64) {
		floats.MulTo(dst, row, s.scale)
		floats.Add(dst, s.min)
	})
}

// InverseTransform maps model-space values back to real units
func (s *MinMaxScaler) InverseTransform(batch [][]float64) ([][]float64, error) {
	return mapRows(batch, len(s.min), func(dst, row []float64) {
		floats.SubTo(dst, row, s.min)
		floats.Div(dst, s.scale)
	})
}

// mapRows checks every row's width and lets fn write its transform into a
// fresh row, leaving batch untouched.
func mapRows(batch [][]float64, width int, fn func(dst, row []float64)) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, row := range batch {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), width, ErrWidthMismatch)
		}
		scaled := make([]float64, width)
		fn(scaled, row)
		out[i] = scaled
	}
	return out, nil
}

func checkNames(names []string, width int) error {
	if len(names) != 0 && len(names) != width {
		return fmt.Errorf("%d feature names given for %d columns", len(names), width)
	}
	return nil
}

func checkFinite(field string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not a finite number", field, i)
		}
	}
	return nil
}
