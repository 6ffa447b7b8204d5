// Package experiment implements the training loop of deep Q-learning
// with experience replay, greedy evaluation, and reporting
package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/replaydqn/agent/deepq"
	"github.com/samuelfneumann/replaydqn/agent/policy"
	"github.com/samuelfneumann/replaydqn/config"
	env "github.com/samuelfneumann/replaydqn/environment"
	"github.com/samuelfneumann/replaydqn/experiment/tracker"
	"github.com/samuelfneumann/replaydqn/expreplay"
	"github.com/samuelfneumann/replaydqn/network"
	"github.com/samuelfneumann/replaydqn/schedule"
	ts "github.com/samuelfneumann/replaydqn/timestep"
	"github.com/samuelfneumann/replaydqn/utils/progressbar"
)

// EnvSeeds is the number of distinct environment seeds a run draws from
const EnvSeeds = 100

// Seeds holds the seed of every random source of a run. All are drawn
// from a master source seeded with the SEED option.
type Seeds struct {
	Env     uint64
	Replay  uint64
	Policy  uint64
	Network uint64
}

// NewSeeds derives the seeds of a run from the master seed
func NewSeeds(master uint64) Seeds {
	rng := rand.New(rand.NewSource(master))
	return Seeds{
		Env:     rng.Uint64n(EnvSeeds),
		Replay:  rng.Uint64(),
		Policy:  rng.Uint64(),
		Network: rng.Uint64(),
	}
}

// Trainer trains a Q-network online on an environment. Every episode,
// training or evaluation, starts from a Reset with the same
// environment seed.
//
// Each environment step selects an ε-greedy action, stores the
// transition, performs a learning update when the schedule says so,
// and then decays ε and, with prioritized replay, anneals β. Each
// episode ends when the environment ends it, after N_STEPS steps, or
// when the step budget is exhausted. After every PLOT_INTERVAL
// episodes a greedy evaluation episode is run and a Report is sent to
// every registered Reporter.
type Trainer struct {
	hp     config.Hyperparameters
	env    env.Environment
	seeds  Seeds
	logger zerolog.Logger

	replay      expreplay.ExperienceReplayer
	prioritizer expreplay.Prioritizer
	online      *network.QNet
	target      *network.QNet
	engine      *deepq.Engine
	sync        *deepq.TargetSync
	schedule    *schedule.Controller
	policy      *policy.EGreedy

	train *tracker.Return
	eval  *tracker.Return

	reporters []Reporter
	progress  *progressbar.ProgressBar

	lastLoss float64
}

// NewTrainer returns a new Trainer for the run described by h on e.
// Training and evaluation returns are tracked by train and eval. If
// progress is not nil, a progress bar is drawn to it.
func NewTrainer(h config.Hyperparameters, e env.Environment,
	train, eval *tracker.Return, logger zerolog.Logger,
	progress io.Writer) (*Trainer, error) {
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}

	obsSpec, actSpec := e.ObservationSpec(), e.ActionSpec()
	if actSpec.Cardinality != env.Discrete {
		return nil, fmt.Errorf("newTrainer: environment actions must be " +
			"discrete")
	}
	features, actions := obsSpec.Len(), actSpec.Actions()

	logger = logger.With().Str("component", "trainer").Logger()
	if h.UseGPU {
		logger.Warn().Msg("USE_GPU is set but no GPU backend is built, " +
			"running on CPU")
	}

	seeds := NewSeeds(h.Seed)

	replay, err := h.Replay().Create(features, seeds.Replay)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}
	var prioritizer expreplay.Prioritizer
	var priorities deepq.PriorityUpdater
	if p, ok := replay.(expreplay.Prioritizer); ok {
		prioritizer = p
		priorities = p
	}

	online, err := network.NewQNet(h.Network(features, actions),
		seeds.Network)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}
	target, err := online.Clone()
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}

	engine, err := deepq.NewEngine(online, target,
		deepq.NewTargetRule(h.DDQN), h.Gamma, priorities)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}

	sync, err := deepq.NewTargetSync(online, target, h.UpdateTarget)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}

	sched, err := schedule.New(h.Schedule())
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %v", err)
	}

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.New(progress, 50, h.TotalTimesteps,
			h.TotalTimesteps/1000)
	}

	return &Trainer{
		hp:          h,
		env:         e,
		seeds:       seeds,
		logger:      logger,
		replay:      replay,
		prioritizer: prioritizer,
		online:      online,
		target:      target,
		engine:      engine,
		sync:        sync,
		schedule:    sched,
		policy:      policy.NewEGreedy(seeds.Policy),
		train:       train,
		eval:        eval,
		progress:    bar,
	}, nil
}

// Register registers a Reporter which receives every Report
func (t *Trainer) Register(r Reporter) {
	t.reporters = append(t.reporters, r)
}

// Run trains until the step budget is exhausted or ctx is done. Once
// the budget is exhausted, each Reporter which is a Finisher is
// finished.
func (t *Trainer) Run(ctx context.Context) error {
	t.logger.Info().
		Str("run", t.hp.RunName).
		Uint64("env_seed", t.seeds.Env).
		Int("total_steps", t.hp.TotalTimesteps).
		Bool("ddqn", t.hp.DDQN).
		Bool("dueling", t.hp.Dueling).
		Bool("per", t.hp.PER).
		Msg("starting training")

	for !t.schedule.Done() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
		if err := t.RunEpisode(ctx); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}

	if t.progress != nil {
		t.progress.Close()
	}
	for _, reporter := range t.reporters {
		if f, ok := reporter.(Finisher); ok {
			if err := f.Finish(); err != nil {
				return fmt.Errorf("run: %w", err)
			}
		}
	}
	t.logger.Info().
		Int("steps", t.schedule.Steps()).
		Int("episodes", t.schedule.Episodes()).
		Int("updates", t.sync.Updates()).
		Int("syncs", t.sync.Syncs()).
		Msg("training finished")
	return nil
}

// RunEpisode runs a single training episode and, when due, an
// evaluation
func (t *Trainer) RunEpisode(ctx context.Context) error {
	step, err := t.env.Reset(t.seeds.Env)
	if err != nil {
		return fmt.Errorf("runEpisode: %v", err)
	}
	t.train.Track(step)

	for i := 0; i < t.hp.NSteps && !t.schedule.Done(); i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("runEpisode: %v", err)
		}

		next, err := t.step(step)
		if err != nil {
			return fmt.Errorf("runEpisode: %v", err)
		}
		step = next
		if step.Last() {
			break
		}
	}

	t.train.EndEpisode(t.schedule.Steps())
	prevLR := t.schedule.LearnRate()
	if lr := t.schedule.EndEpisode(); lr != prevLR {
		t.online.SetLearnRate(lr)
		t.logger.Debug().Float64("lr", lr).Msg("learning rate decayed")
	}

	if t.schedule.ShouldEvaluate() {
		return t.report()
	}
	return nil
}

// step takes one environment step from step and learns if due
func (t *Trainer) step(step ts.TimeStep) (ts.TimeStep, error) {
	n := t.schedule.BeginStep()

	values, err := t.online.Forward(rawData(step.Observation))
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("step %v: %v", n, err)
	}
	action := t.policy.SelectAction(values, t.schedule.Epsilon())

	next, err := t.env.Step(action)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("step %v: %v", n, err)
	}
	t.train.Track(next)

	before := t.schedule.Phase(t.replay.Len())
	t.replay.Add(ts.NewTransition(step, action, next))
	if after := t.schedule.Phase(t.replay.Len()); after != before {
		t.logger.Info().Int("step", n).Stringer("phase", after).
			Msg("phase changed")
	}

	if t.schedule.ShouldLearn(t.replay.Len()) {
		if err := t.learn(); err != nil {
			return ts.TimeStep{}, fmt.Errorf("step %v: %v", n, err)
		}
	}

	t.schedule.EndStep()
	if t.prioritizer != nil {
		t.prioritizer.SetBeta(t.schedule.Beta())
	}
	if t.progress != nil {
		t.progress.Increment()
	}

	return next, nil
}

// learn performs one learning update, syncing the target network
// first when due
func (t *Trainer) learn() error {
	synced, err := t.sync.Tick()
	if err != nil {
		return fmt.Errorf("learn: %v", err)
	}
	if synced {
		t.logger.Debug().Int("update", t.sync.Updates()).
			Msg("target network synced")
	}

	batch, err := t.replay.Sample()
	if err != nil {
		return fmt.Errorf("learn: %v", err)
	}

	result, err := t.engine.Update(batch)
	if err != nil {
		return fmt.Errorf("learn: %w", err)
	}
	t.lastLoss = result.Loss
	return nil
}

// Evaluate runs one greedy episode of at most N_STEPS steps and
// returns its return
func (t *Trainer) Evaluate() (float64, error) {
	step, err := t.env.Reset(t.seeds.Env)
	if err != nil {
		return 0, fmt.Errorf("evaluate: %v", err)
	}
	t.eval.Track(step)

	for i := 0; i < t.hp.NSteps && !step.Last(); i++ {
		values, err := t.online.Forward(rawData(step.Observation))
		if err != nil {
			return 0, fmt.Errorf("evaluate: %v", err)
		}
		action := t.policy.SelectAction(values, policy.Greedy)

		step, err = t.env.Step(action)
		if err != nil {
			return 0, fmt.Errorf("evaluate: %v", err)
		}
		t.eval.Track(step)
	}

	return t.eval.EndEpisode(t.schedule.Steps()), nil
}

// report evaluates the greedy policy and sends a Report to each
// Reporter
func (t *Trainer) report() error {
	evalReturn, err := t.Evaluate()
	if err != nil {
		return fmt.Errorf("report: %v", err)
	}

	r := Report{
		RollingTrainReturn: t.train.Rolling(t.hp.PlotInterval),
		EvalReturn:         evalReturn,
		Step:               t.schedule.Steps(),
		Episode:            t.schedule.Episodes(),
		Epsilon:            t.schedule.Epsilon(),
	}
	if t.hp.IsLRDecay {
		lr := t.schedule.LearnRate()
		r.LR = &lr
	}

	for _, reporter := range t.reporters {
		if err := reporter.Report(r); err != nil {
			return fmt.Errorf("report: %v", err)
		}
	}
	return nil
}

// Steps returns the number of environment steps taken
func (t *Trainer) Steps() int {
	return t.schedule.Steps()
}

// Episodes returns the number of completed training episodes
func (t *Trainer) Episodes() int {
	return t.schedule.Episodes()
}

// Updates returns the number of learning updates performed
func (t *Trainer) Updates() int {
	return t.sync.Updates()
}

// Syncs returns the number of target network syncs
func (t *Trainer) Syncs() int {
	return t.sync.Syncs()
}

// Epsilon returns the current exploration rate
func (t *Trainer) Epsilon() float64 {
	return t.schedule.Epsilon()
}

// Loss returns the loss of the last learning update
func (t *Trainer) Loss() float64 {
	return t.lastLoss
}

// Seeds returns the seeds of the run
func (t *Trainer) Seeds() Seeds {
	return t.seeds
}

func rawData(v mat.Vector) []float64 {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}
