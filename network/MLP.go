package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// mlp is a multi-layered perceptron built in a Gorgonia graph which
// predicts one value per action for each row of its input. With a
// dueling head the final layer is split into a state value stream V
// and an advantage stream A, combined as Q = V + A - mean(A).
type mlp struct {
	g      *G.ExprGraph
	input  *G.Node
	layers []*fcLayer

	// Plain head
	out *fcLayer

	// Dueling head
	value     *fcLayer
	advantage *fcLayer

	learnables G.Nodes
	prediction *G.Node
	predVal    G.Value

	batchSize int
	features  int
	actions   int
}

// newMLP adds an mlp with the architecture described by c and an input
// of batchSize rows to the graph g
func newMLP(g *G.ExprGraph, c Config, batchSize int,
	init G.InitWFn) (*mlp, error) {
	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batchSize, c.Features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	net := &mlp{
		g:         g,
		input:     input,
		batchSize: batchSize,
		features:  c.Features,
		actions:   c.Actions,
	}

	in := c.Features
	for i, size := range c.HiddenSizes {
		layer := newFCLayer(g, in, size, c.Activations[i], init,
			fmt.Sprintf("L%d", i))
		net.layers = append(net.layers, layer)
		net.learnables = append(net.learnables, layer.learnables()...)
		in = size
	}

	if c.Dueling {
		net.value = newFCLayer(g, in, 1, nil, init, "Value")
		net.advantage = newFCLayer(g, in, c.Actions, nil, init, "Advantage")
		net.learnables = append(net.learnables, net.value.learnables()...)
		net.learnables = append(net.learnables,
			net.advantage.learnables()...)
	} else {
		net.out = newFCLayer(g, in, c.Actions, nil, init, "Out")
		net.learnables = append(net.learnables, net.out.learnables()...)
	}

	prediction, err := net.fwd(input)
	if err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %v",
			err)
	}
	net.prediction = prediction
	G.Read(net.prediction, &net.predVal)

	return net, nil
}

// fwd adds the forward pass of the mlp on x to the graph
func (m *mlp) fwd(x *G.Node) (*G.Node, error) {
	var err error
	for _, layer := range m.layers {
		x, err = layer.fwd(x)
		if err != nil {
			return nil, err
		}
	}

	if m.out != nil {
		return m.out.fwd(x)
	}

	v, err := m.value.fwd(x)
	if err != nil {
		return nil, err
	}
	a, err := m.advantage.fwd(x)
	if err != nil {
		return nil, err
	}

	// A(I - J/n) subtracts the row mean of A from each advantage and
	// V 1^T repeats the state value across actions
	n := m.actions
	centre := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			centre[i*n+j] = -1 / float64(n)
			if i == j {
				centre[i*n+j] += 1
			}
		}
	}
	centreNode := G.NewMatrix(
		m.g,
		tensor.Float64,
		G.WithShape(n, n),
		G.WithName("AdvantageCentre"),
		G.WithValue(tensor.New(tensor.WithBacking(centre),
			tensor.WithShape(n, n))),
	)

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	onesNode := G.NewMatrix(
		m.g,
		tensor.Float64,
		G.WithShape(1, n),
		G.WithName("ValueSpread"),
		G.WithValue(tensor.New(tensor.WithBacking(ones),
			tensor.WithShape(1, n))),
	)

	centred, err := G.Mul(a, centreNode)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not centre advantages: %v", err)
	}
	spread, err := G.Mul(v, onesNode)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not spread values: %v", err)
	}
	return G.Add(spread, centred)
}

// setInput sets the value of the input node before running the forward
// pass.
func (m *mlp) setInput(input []float64) error {
	if len(input) != m.features*m.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs \n\twant(%v)"+
			"\n\thave(%v)", m.features*m.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.input.Shape()...),
	)
	return G.Let(m.input, inputTensor)
}

// output returns a copy of the last prediction
func (m *mlp) output() []float64 {
	out := make([]float64, m.batchSize*m.actions)
	copy(out, m.predVal.Data().([]float64))
	return out
}

// params returns a copy of the values of each learnable node
func (m *mlp) params() [][]float64 {
	params := make([][]float64, len(m.learnables))
	for i, node := range m.learnables {
		data := node.Value().Data().([]float64)
		params[i] = make([]float64, len(data))
		copy(params[i], data)
	}
	return params
}

// setParams sets the values of each learnable node to a copy of params
func (m *mlp) setParams(params [][]float64) error {
	if len(params) != len(m.learnables) {
		return fmt.Errorf("setParams: invalid number of parameters "+
			"\n\twant(%v)\n\thave(%v)", len(m.learnables), len(params))
	}

	for i, node := range m.learnables {
		shape := node.Shape()
		if len(params[i]) != shape.TotalSize() {
			return fmt.Errorf("setParams: invalid size for %v \n\twant(%v)"+
				"\n\thave(%v)", node.Name(), shape.TotalSize(), len(params[i]))
		}

		backing := make([]float64, len(params[i]))
		copy(backing, params[i])
		value := tensor.New(tensor.WithBacking(backing),
			tensor.WithShape(shape...))
		if err := G.Let(node, value); err != nil {
			return fmt.Errorf("setParams: could not set %v: %v", node.Name(),
				err)
		}
	}
	return nil
}

// zeroGrads zeroes the gradient of each learnable node
func (m *mlp) zeroGrads() error {
	for _, node := range m.learnables {
		g, err := node.Grad()
		if err != nil {
			return fmt.Errorf("zeroGrads: %v", err)
		}
		t, ok := g.(tensor.Tensor)
		if !ok {
			return fmt.Errorf("zeroGrads: gradient of %v is not a tensor",
				node.Name())
		}
		t.Zero()
	}
	return nil
}

// grads returns a copy of the gradient of each learnable node
func (m *mlp) grads() ([][]float64, error) {
	grads := make([][]float64, len(m.learnables))
	for i, node := range m.learnables {
		g, err := node.Grad()
		if err != nil {
			return nil, fmt.Errorf("grads: %v", err)
		}
		grads[i] = copyOf(g.Data().([]float64))
	}
	return grads, nil
}
