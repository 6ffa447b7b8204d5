package network

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/replaydqn/solver"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// QNet is an action-value function approximator. It keeps one Gorgonia
// graph per batch size it is evaluated at:
//
//	single:  1 row, used for action selection
//	batched: BatchSize rows, used to compute bootstrap targets
//	trainer: BatchSize rows with the weighted squared TD error loss and
//	         its gradient, used for learning
//
// All graphs hold the same parameters. The trainer graph is the source
// of truth and the others are updated after each training step.
//
// A QNet created by Clone has no trainer graph and cannot be trained.
type QNet struct {
	config Config

	single    *mlp
	singleVM  G.VM
	batched   *mlp
	batchedVM G.VM

	trainer   *mlp
	trainerVM G.VM
	solver    solver.Solver

	// Loss nodes of the trainer graph
	actionMask *G.Node
	targets    *G.Node
	weights    *G.Node
	losses     *G.Node
	cost       *G.Node
	lossesVal  G.Value
}

// NewQNet returns a new trainable QNet with parameters initialized from
// a random source seeded with seed
func NewQNet(c Config, seed uint64) (*QNet, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newQNet: %v", err)
	}
	if c.Solver == nil {
		return nil, fmt.Errorf("newQNet: no solver configured")
	}

	init, err := c.Init.Create(rand.NewSource(seed))
	if err != nil {
		return nil, fmt.Errorf("newQNet: %v", err)
	}

	s, err := c.Solver.Create()
	if err != nil {
		return nil, fmt.Errorf("newQNet: could not create solver: %v", err)
	}

	q, err := newInference(c)
	if err != nil {
		return nil, fmt.Errorf("newQNet: %v", err)
	}
	q.solver = s

	if err := q.buildTrainer(init); err != nil {
		return nil, fmt.Errorf("newQNet: %v", err)
	}

	if err := q.syncInference(q.trainer.params()); err != nil {
		return nil, fmt.Errorf("newQNet: %v", err)
	}
	return q, nil
}

// newInference returns a QNet with only its single and batched graphs
// built. Parameters are zero.
func newInference(c Config) (*QNet, error) {
	zeroes := G.Zeroes()

	singleGraph := G.NewGraph()
	single, err := newMLP(singleGraph, c, 1, zeroes)
	if err != nil {
		return nil, err
	}

	batchedGraph := G.NewGraph()
	batched, err := newMLP(batchedGraph, c, c.BatchSize, zeroes)
	if err != nil {
		return nil, err
	}

	return &QNet{
		config:    c,
		single:    single,
		singleVM:  G.NewTapeMachine(singleGraph),
		batched:   batched,
		batchedVM: G.NewTapeMachine(batchedGraph),
	}, nil
}

// buildTrainer builds the trainer graph: the network, the loss
//
//	L_i = (target_i - Q(s_i, a_i))^2
//	cost = mean(L_i * w_i)
//
// and the gradient of the cost with respect to the learnables
func (q *QNet) buildTrainer(init G.InitWFn) error {
	g := G.NewGraph()
	net, err := newMLP(g, q.config, q.config.BatchSize, init)
	if err != nil {
		return err
	}
	batch, actions := q.config.BatchSize, q.config.Actions

	q.actionMask = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, actions),
		G.WithName("actionMask"),
		G.WithInit(G.Zeroes()),
	)
	q.targets = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(batch),
		G.WithName("targets"),
		G.WithInit(G.Zeroes()),
	)
	q.weights = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(batch),
		G.WithName("weights"),
		G.WithInit(G.Zeroes()),
	)

	// Q(s, a) for the actions taken
	selected := G.Must(G.HadamardProd(net.prediction, q.actionMask))
	selected = G.Must(G.Sum(selected, 1))

	q.losses = G.Must(G.Square(G.Must(G.Sub(q.targets, selected))))
	q.cost = G.Must(G.Mean(G.Must(G.HadamardProd(q.losses, q.weights))))
	G.Read(q.losses, &q.lossesVal)

	if _, err := G.Grad(q.cost, net.learnables...); err != nil {
		return fmt.Errorf("buildTrainer: could not compute gradient: %v", err)
	}

	q.trainer = net
	q.trainerVM = G.NewTapeMachine(g, G.BindDualValues(net.learnables...))
	return nil
}

// Forward returns the action values of each row of states, row-major
// with one column per action. The number of rows must be 1 or the
// batch size.
func (q *QNet) Forward(states []float64) ([]float64, error) {
	var net *mlp
	var vm G.VM
	switch len(states) {
	case q.config.Features:
		net, vm = q.single, q.singleVM
	case q.config.Features * q.config.BatchSize:
		net, vm = q.batched, q.batchedVM
	default:
		return nil, fmt.Errorf("forward: states must have 1 or %v rows of "+
			"%v features, have %v values", q.config.BatchSize,
			q.config.Features, len(states))
	}
	defer vm.Reset()

	if err := net.setInput(states); err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	return net.output(), nil
}

// Train takes one gradient step on the weighted mean squared error
// between targets and the action values of the actions taken in states.
// The per-sample losses and the weighted mean are returned. If the
// loss is not finite, no step is taken.
func (q *QNet) Train(states []float64, actions []int, targets,
	weights []float64) ([]float64, float64, error) {
	if q.trainer == nil {
		return nil, 0, fmt.Errorf("train: network has no trainer graph")
	}
	batch := q.config.BatchSize
	if len(actions) != batch || len(targets) != batch ||
		len(weights) != batch {
		return nil, 0, fmt.Errorf("train: expected batches of size %v, have "+
			"(%v actions, %v targets, %v weights)", batch, len(actions),
			len(targets), len(weights))
	}
	defer q.trainerVM.Reset()

	mask := make([]float64, batch*q.config.Actions)
	for i, a := range actions {
		if a < 0 || a >= q.config.Actions {
			return nil, 0, fmt.Errorf("train: illegal action %v", a)
		}
		mask[i*q.config.Actions+a] = 1.0
	}

	if err := q.trainer.setInput(states); err != nil {
		return nil, 0, fmt.Errorf("train: %v", err)
	}
	if err := G.Let(q.actionMask, tensor.New(tensor.WithBacking(mask),
		tensor.WithShape(batch, q.config.Actions))); err != nil {
		return nil, 0, fmt.Errorf("train: could not set actions: %v", err)
	}
	if err := G.Let(q.targets, tensor.New(tensor.WithBacking(copyOf(targets)),
		tensor.WithShape(batch))); err != nil {
		return nil, 0, fmt.Errorf("train: could not set targets: %v", err)
	}
	if err := G.Let(q.weights, tensor.New(tensor.WithBacking(copyOf(weights)),
		tensor.WithShape(batch))); err != nil {
		return nil, 0, fmt.Errorf("train: could not set weights: %v", err)
	}

	if err := q.trainerVM.RunAll(); err != nil {
		return nil, 0, fmt.Errorf("train: %v", err)
	}

	losses := copyOf(q.lossesVal.Data().([]float64))
	cost := floats.Dot(losses, weights) / float64(batch)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		if err := q.trainer.zeroGrads(); err != nil {
			return nil, 0, fmt.Errorf("train: %v", err)
		}
		return losses, cost, nil
	}

	if err := q.solver.Step(G.NodesToValueGrads(q.trainer.learnables)); err != nil {
		return nil, 0, fmt.Errorf("train: could not step solver: %v", err)
	}

	if err := q.syncInference(q.trainer.params()); err != nil {
		return nil, 0, fmt.Errorf("train: %v", err)
	}
	return losses, cost, nil
}

// Params returns a copy of the parameters of the QNet
func (q *QNet) Params() [][]float64 {
	if q.trainer != nil {
		return q.trainer.params()
	}
	return q.batched.params()
}

// SetParams sets the parameters of the QNet to a copy of params
func (q *QNet) SetParams(params [][]float64) error {
	if q.trainer != nil {
		if err := q.trainer.setParams(params); err != nil {
			return err
		}
	}
	return q.syncInference(params)
}

// CopyFrom sets the parameters of the QNet to those of source
func (q *QNet) CopyFrom(source *QNet) error {
	return q.SetParams(source.Params())
}

// Clone returns a QNet with the same architecture and parameters. The
// clone shares no state with q and has no trainer graph.
func (q *QNet) Clone() (*QNet, error) {
	clone, err := newInference(q.config)
	if err != nil {
		return nil, fmt.Errorf("clone: %v", err)
	}
	if err := clone.SetParams(q.Params()); err != nil {
		return nil, fmt.Errorf("clone: %v", err)
	}
	return clone, nil
}

// LearnRate returns the learning rate of the solver, or 0 if the QNet
// cannot be trained
func (q *QNet) LearnRate() float64 {
	if q.solver == nil {
		return 0
	}
	return q.solver.LearnRate()
}

// SetLearnRate sets the learning rate of the solver
func (q *QNet) SetLearnRate(lr float64) {
	if q.solver != nil {
		q.solver.SetLearnRate(lr)
	}
}

// Actions returns the number of actions the QNet predicts values for
func (q *QNet) Actions() int {
	return q.config.Actions
}

// Features returns the number of features in a state
func (q *QNet) Features() int {
	return q.config.Features
}

// BatchSize returns the number of rows in a training batch
func (q *QNet) BatchSize() int {
	return q.config.BatchSize
}

// syncInference sets the parameters of the single and batched graphs
func (q *QNet) syncInference(params [][]float64) error {
	if err := q.single.setParams(params); err != nil {
		return err
	}
	return q.batched.setParams(params)
}

func copyOf(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
