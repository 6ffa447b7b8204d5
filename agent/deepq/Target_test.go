package deepq

import (
	"math"
	"testing"

	"github.com/samuelfneumann/replaydqn/expreplay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchOf returns a batch whose next states are keyed by next
func batchOf(rewards, dones, next []float64) expreplay.Batch {
	n := len(rewards)
	b := expreplay.Batch{
		States:      make([]float64, n),
		Actions:     make([]int, n),
		Rewards:     rewards,
		Dones:       dones,
		NextStates:  next,
		Weights:     make([]float64, n),
		Indices:     make([]int, n),
		FeatureSize: 1,
	}
	for i := range b.Weights {
		b.Weights[i] = 1
		b.Indices[i] = i
	}
	return b
}

func TestTerminalTargetIsReward(t *testing.T) {
	online := newTableQ(1, 2)
	target := newTableQ(1, 2)
	online.table[7] = []float64{1e6, -1e6}
	target.table[7] = []float64{math.NaN(), math.Inf(1)}

	b := batchOf([]float64{-1.5}, []float64{1}, []float64{7})
	for _, rule := range []TargetRule{Vanilla{}, Double{}} {
		targets, err := rule.Targets(online, target, b, 0.99)
		require.NoError(t, err)
		assert.Equal(t, []float64{-1.5}, targets, "%v", rule)
	}
}

func TestVanillaTargets(t *testing.T) {
	online := newTableQ(1, 3)
	target := newTableQ(1, 3)
	target.table[1] = []float64{0.5, 2, -1}
	target.table[2] = []float64{-3, -2, -4}

	b := batchOf([]float64{1, 0, 2}, []float64{0, 0, 1},
		[]float64{1, 2, 1})
	targets, err := Vanilla{}.Targets(online, target, b, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1 + 0.5*2, 0.5 * -2, 2}, targets)
}

func TestDoubleAndVanillaDiverge(t *testing.T) {
	online := newTableQ(1, 2)
	target := newTableQ(1, 2)

	// The online network prefers action 1, the target action 0
	online.table[3] = []float64{1, 5}
	target.table[3] = []float64{3, 2}

	b := batchOf([]float64{1}, []float64{0}, []float64{3})
	vanilla, err := Vanilla{}.Targets(online, target, b, 0.9)
	require.NoError(t, err)
	double, err := Double{}.Targets(online, target, b, 0.9)
	require.NoError(t, err)

	assert.InDelta(t, 1+0.9*3, vanilla[0], 1e-12)
	assert.InDelta(t, 1+0.9*2, double[0], 1e-12)
	assert.NotEqual(t, vanilla, double)
}

func TestDoubleEqualsVanillaWithIdenticalNetworks(t *testing.T) {
	online := newTableQ(1, 4)
	target := newTableQ(1, 4)
	for key, values := range map[float64][]float64{
		1: {0.1, 0.7, -2, 0.3},
		2: {5, 4, 3, 2},
		3: {-1, -1, -0.5, -3},
	} {
		online.table[key] = values
		target.table[key] = values
	}

	b := batchOf([]float64{1, -1, 0.5, 2}, []float64{0, 0, 0, 1},
		[]float64{1, 2, 3, 2})
	vanilla, err := Vanilla{}.Targets(online, target, b, 0.99)
	require.NoError(t, err)
	double, err := Double{}.Targets(online, target, b, 0.99)
	require.NoError(t, err)
	assert.Equal(t, vanilla, double)
}

func TestNewTargetRule(t *testing.T) {
	assert.Equal(t, Double{}, NewTargetRule(true))
	assert.Equal(t, Vanilla{}, NewTargetRule(false))
	assert.Equal(t, "Double", NewTargetRule(true).String())
}
