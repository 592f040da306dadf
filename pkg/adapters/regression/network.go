package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInputWidth is returned when a batch row does not match the network's
// input width.
var ErrInputWidth = errors.New("input width does not match network")

// Activation names a layer's element-wise activation function
type Activation string

const (
	Linear   Activation = "linear"
	ReLU     Activation = "relu"
	Sigmoid  Activation = "sigmoid"
	Tanh     Activation = "tanh"
	ELU      Activation = "elu"
	Softplus Activation = "softplus"
)

var activations = map[Activation]func(float64) float64{
	Linear: func(x float64) float64 { return x },
	ReLU:   func(x float64) float64 { return math.Max(0, x) },
	Sigmoid: func(x float64) float64 {
		return 1 / (1 + math.Exp(-x))
	},
	Tanh: math.Tanh,
	ELU: func(x float64) float64 {
		if x > 0 {
			return x
		}
		return math.Expm1(x)
	},
	Softplus: func(x float64) float64 {
		return math.Log1p(math.Exp(-math.Abs(x))) + math.Max(x, 0)
	},
}

// LayerSpec is the serialized form of a dense layer. Kernel is indexed
// [input][unit].
type LayerSpec struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Activation Activation  `json:"activation,omitempty" yaml:"activation,omitempty"`
	Kernel     [][]float64 `json:"kernel" yaml:"kernel"`
	Bias       []float64   `json:"bias" yaml:"bias"`
}

// NetworkSpec is the serialized form of a feed-forward network
type NetworkSpec struct {
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Layers []LayerSpec `json:"layers" yaml:"layers"`
}

// Network is a dense feed-forward regression network.
// It is immutable after New and safe for concurrent use.
type Network struct {
	name   string
	layers []layer
}

// layer holds an inputs x units kernel and one bias entry per unit
type layer struct {
	name       string
	activation Activation
	activate   func(float64) float64
	kernel     *mat.Dense
	bias       *mat.VecDense
}

// New builds a network from its serialized form and checks that consecutive
// layers have matching shapes.
func New(spec NetworkSpec) (*Network, error) {
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("network has no layers")
	}

	n := &Network{name: spec.Name, layers: make([]layer, 0, len(spec.Layers))}
	prevUnits := -1
	for i, ls := range spec.Layers {
		l, err := newLayer(ls)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		inputs, units := l.kernel.Dims()
		if prevUnits >= 0 && inputs != prevUnits {
			return nil, fmt.Errorf("layer %d: expects %d inputs but previous layer has %d units", i, inputs, prevUnits)
		}
		prevUnits = units
		n.layers = append(n.layers, l)
	}
	return n, nil
}

func newLayer(spec LayerSpec) (layer, error) {
	act := spec.Activation
	if act == "" {
		act = Linear
	}
	fn, ok := activations[act]
	if !ok {
		return layer{}, fmt.Errorf("unsupported activation: %s", act)
	}
	if len(spec.Kernel) == 0 {
		return layer{}, fmt.Errorf("kernel is empty")
	}
	units := len(spec.Bias)
	if units == 0 {
		return layer{}, fmt.Errorf("bias is empty")
	}

	kernel := mat.NewDense(len(spec.Kernel), units, nil)
	for i, row := range spec.Kernel {
		if len(row) != units {
			return layer{}, fmt.Errorf("kernel row %d has %d columns but bias has %d", i, len(row), units)
		}
		for j, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return layer{}, fmt.Errorf("kernel[%d][%d] is not a finite number", i, j)
			}
		}
		kernel.SetRow(i, row)
	}
	for j, b := range spec.Bias {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return layer{}, fmt.Errorf("bias[%d] is not a finite number", j)
		}
	}

	return layer{
		name:       spec.Name,
		activation: act,
		activate:   fn,
		kernel:     kernel,
		bias:       mat.NewVecDense(units, append([]float64(nil), spec.Bias...)),
	}, nil
}

// Name returns the network name recorded in the artifact
func (n *Network) Name() string { return n.name }

// Depth returns the number of dense layers
func (n *Network) Depth() int { return len(n.layers) }

// InputSize returns the number of features the network consumes
func (n *Network) InputSize() int {
	inputs, _ := n.layers[0].kernel.Dims()
	return inputs
}

// OutputSize returns the number of values the network produces per row
func (n *Network) OutputSize() int { return n.layers[len(n.layers)-1].bias.Len() }

// Predict runs a forward pass for every row of batch
func (n *Network) Predict(batch [][]float64) ([][]float64, error) {
	if len(batch) == 0 {
		return [][]float64{}, nil
	}

	width := n.InputSize()
	x := mat.NewDense(len(batch), width, nil)
	for i, row := range batch {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, expected %d: %w", i, len(row), width, ErrInputWidth)
		}
		x.SetRow(i, row)
	}

	for _, l := range n.layers {
		x = l.forward(x)
	}

	out := make([][]float64, len(batch))
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out, nil
}

// forward computes activate(x*kernel + bias) for a batch of rows
func (l layer) forward(x *mat.Dense) *mat.Dense {
	var y mat.Dense
	y.Mul(x, l.kernel)
	y.Apply(func(_, j int, v float64) float64 {
		return l.activate(v + l.bias.AtVec(j))
	}, &y)
	return &y
}
