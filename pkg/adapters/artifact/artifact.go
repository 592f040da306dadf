package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aescanero/resforecast/pkg/adapters/regression"
	"github.com/aescanero/resforecast/pkg/adapters/scaling"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Format is the on-disk encoding of an artifact
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Paths holds the locations of the three startup artifacts
type Paths struct {
	Model        string
	InputScaler  string
	OutputScaler string
}

// Bundle holds the decoded startup artifacts
type Bundle struct {
	Model        *regression.Network
	InputScaler  scaling.Scaler
	OutputScaler scaling.Scaler
}

// FormatOf infers the artifact encoding from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported artifact extension %q for %s", filepath.Ext(path), path)
	}
}

// Decode reads the file at path into v using the encoding implied by its
// extension.
func Decode(path string, v interface{}) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s artifact %s: %w", format, path, err)
	}
	return nil
}

// LoadModel reads a serialized network
func LoadModel(path string) (*regression.Network, error) {
	var spec regression.NetworkSpec
	if err := Decode(path, &spec); err != nil {
		return nil, err
	}

	network, err := regression.New(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return network, nil
}

// LoadScaler reads a serialized fitted scaler
func LoadScaler(path string) (scaling.Scaler, error) {
	var spec scaling.Spec
	if err := Decode(path, &spec); err != nil {
		return nil, err
	}

	scaler, err := scaling.New(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid scaler artifact %s: %w", path, err)
	}
	return scaler, nil
}

// Load reads all three artifacts. Shape consistency between them is checked
// by the predictor that consumes the bundle.
func Load(paths Paths, logger *zap.Logger) (*Bundle, error) {
	model, err := LoadModel(paths.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	logger.Info("model loaded",
		zap.String("path", paths.Model),
		zap.String("name", model.Name()),
		zap.Int("layers", model.Depth()),
		zap.Int("inputs", model.InputSize()),
		zap.Int("outputs", model.OutputSize()))

	inputScaler, err := LoadScaler(paths.InputScaler)
	if err != nil {
		return nil, fmt.Errorf("failed to load input scaler: %w", err)
	}
	logger.Info("input scaler loaded",
		zap.String("path", paths.InputScaler),
		zap.String("type", string(inputScaler.Kind())),
		zap.Int("width", inputScaler.Width()))

	outputScaler, err := LoadScaler(paths.OutputScaler)
	if err != nil {
		return nil, fmt.Errorf("failed to load output scaler: %w", err)
	}
	logger.Info("output scaler loaded",
		zap.String("path", paths.OutputScaler),
		zap.String("type", string(outputScaler.Kind())),
		zap.Int("width", outputScaler.Width()))

	return &Bundle{
		Model:        model,
		InputScaler:  inputScaler,
		OutputScaler: outputScaler,
	}, nil
}
