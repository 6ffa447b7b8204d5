package deepq

import "fmt"

// TargetSync copies the parameters of an online approximator into a
// target approximator every interval learning updates. Between syncs
// the target is never written to.
type TargetSync struct {
	online   Parameterized
	target   Parameterized
	interval int

	updates int
	syncs   int
}

// NewTargetSync returns a new TargetSync which syncs target to online
// every interval calls to Tick
func NewTargetSync(online, target Parameterized,
	interval int) (*TargetSync, error) {
	if interval < 1 {
		return nil, fmt.Errorf("newTargetSync: interval must be >= 1 "+
			"\n\twant(>=1)\n\thave(%v)", interval)
	}
	return &TargetSync{online: online, target: target, interval: interval},
		nil
}

// Tick records a learning update and syncs the target if the number of
// learning updates is now a multiple of the interval. It must be called
// before the gradient step of the update it records. Tick returns
// whether a sync happened.
func (t *TargetSync) Tick() (bool, error) {
	t.updates++
	if t.updates%t.interval != 0 {
		return false, nil
	}

	if err := t.Sync(); err != nil {
		return false, fmt.Errorf("tick: %v", err)
	}
	return true, nil
}

// Sync copies the online parameters into the target
func (t *TargetSync) Sync() error {
	if err := t.target.SetParams(t.online.Params()); err != nil {
		return fmt.Errorf("sync: %v", err)
	}
	t.syncs++
	return nil
}

// Updates returns the number of learning updates recorded
func (t *TargetSync) Updates() int {
	return t.updates
}

// Syncs returns the number of times the target was synced
func (t *TargetSync) Syncs() int {
	return t.syncs
}

// Interval returns the number of learning updates between syncs
func (t *TargetSync) Interval() int {
	return t.interval
}
