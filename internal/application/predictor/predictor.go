package predictor

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ErrNonFinite is returned when the model chain produces NaN or Inf
var ErrNonFinite = errors.New("prediction is not a finite number")

// Model is a regression function over row batches
type Model interface {
	InputSize() int
	OutputSize() int
	Predict(batch [][]float64) ([][]float64, error)
}

// Scaler is a fitted column transform
type Scaler interface {
	Width() int
	FeatureNames() []string
	Transform(batch [][]float64) ([][]float64, error)
	InverseTransform(batch [][]float64) ([][]float64, error)
}

// Predictor binds the model and its two scalers into one immutable
// inference context. It holds no mutable state and is safe for concurrent
// use.
type Predictor struct {
	model        Model
	inputScaler  Scaler
	outputScaler Scaler
	validator    *Validator
	featureNames []string
}

// New checks that the artifacts fit together and builds the predictor.
// The input scaler defines the request schema; the output side must produce
// exactly the four metrics in MetricNames order.
func New(model Model, inputScaler, outputScaler Scaler, logger *zap.Logger) (*Predictor, error) {
	if model == nil || inputScaler == nil || outputScaler == nil {
		return nil, fmt.Errorf("model, input scaler and output scaler are all required")
	}

	if inputScaler.Width() != model.InputSize() {
		return nil, fmt.Errorf("input scaler has %d columns but model expects %d inputs",
			inputScaler.Width(), model.InputSize())
	}
	if model.OutputSize() != len(MetricNames) {
		return nil, fmt.Errorf("model produces %d outputs, expected %d", model.OutputSize(), len(MetricNames))
	}
	if outputScaler.Width() != len(MetricNames) {
		return nil, fmt.Errorf("output scaler has %d columns, expected %d", outputScaler.Width(), len(MetricNames))
	}
	if names := outputScaler.FeatureNames(); len(names) > 0 {
		for i, name := range names {
			if name != MetricNames[i] {
				return nil, fmt.Errorf("output scaler column %d is %q, expected %q", i, name, MetricNames[i])
			}
		}
	}

	names := resolveFeatureNames(inputScaler.FeatureNames(), inputScaler.Width())

	logger.Info("predictor ready",
		zap.Strings("features", names),
		zap.Strings("metrics", MetricNames))

	return &Predictor{
		model:        model,
		inputScaler:  inputScaler,
		outputScaler: outputScaler,
		validator:    NewValidator(names),
		featureNames: names,
	}, nil
}

// FeatureNames returns the expected request feature order
func (p *Predictor) FeatureNames() []string {
	return append([]string(nil), p.featureNames...)
}

// Predict runs one feature vector through input scaling, the model and
// inverse output scaling.
func (p *Predictor) Predict(features []float64) (Prediction, error) {
	if err := p.validator.Validate(features); err != nil {
		return Prediction{}, err
	}
	return p.predict(features)
}

// PredictNullable is Predict for a decoded JSON array, where a null element
// is reported as a FeatureError.
func (p *Predictor) PredictNullable(raw []*float64) (Prediction, error) {
	features, err := p.validator.Resolve(raw)
	if err != nil {
		return Prediction{}, err
	}
	return p.predict(features)
}

// predict expects features that already passed the validator
func (p *Predictor) predict(features []float64) (Prediction, error) {
	batch := [][]float64{append([]float64(nil), features...)}

	scaled, err := p.inputScaler.Transform(batch)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to scale features: %w", err)
	}
	for i, v := range scaled[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Prediction{}, &FeatureError{
				Expected: p.featureNames,
				Got:      len(features),
				Index:    i,
				Reason:   "value is out of range for the input scaler",
			}
		}
	}

	raw, err := p.model.Predict(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(raw) != 1 {
		return Prediction{}, fmt.Errorf("model returned %d rows for 1 input", len(raw))
	}

	unscaled, err := p.outputScaler.InverseTransform(raw)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to unscale prediction: %w", err)
	}

	for i, v := range unscaled[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Prediction{}, fmt.Errorf("%s: %w", MetricNames[i], ErrNonFinite)
		}
	}

	return predictionFromRow(unscaled[0])
}
