// Package config loads and validates the hyperparameters of a training
// run
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/replaydqn/expreplay"
	"github.com/samuelfneumann/replaydqn/network"
	"github.com/samuelfneumann/replaydqn/schedule"
)

// Hyperparameters holds every option of a training run. All options
// are required.
type Hyperparameters struct {
	RunName string `mapstructure:"RUN_NAME"`
	Seed    uint64 `mapstructure:"SEED"`

	DDQN    bool `mapstructure:"DDQN"`
	Dueling bool `mapstructure:"DUELING"`

	PER      bool    `mapstructure:"PER"`
	PERAlpha float64 `mapstructure:"PER_ALPHA"`
	PERBeta  float64 `mapstructure:"PER_BETA"`

	TotalTimesteps int `mapstructure:"TOTAL_TIMESTEPS"`
	NSteps         int `mapstructure:"N_STEPS"`
	UpdateSteps    int `mapstructure:"UPDATE_STEPS"`
	UpdateTarget   int `mapstructure:"UPDATE_TARGET"`

	BatchSize  int     `mapstructure:"BATCH_SIZE"`
	BufferSize int     `mapstructure:"BUFFER_SIZE"`
	Gamma      float64 `mapstructure:"GAMMA"`

	InitLR    float64 `mapstructure:"INIT_LR"`
	IsLRDecay bool    `mapstructure:"IS_LR_DECAY"`
	LRDecay   float64 `mapstructure:"LR_DECAY"`

	InitEps float64 `mapstructure:"INIT_EPS"`
	FinEps  float64 `mapstructure:"FIN_EPS"`
	Explore int     `mapstructure:"EXPLORE"`

	PlotInterval int  `mapstructure:"PLOT_INTERVAL"`
	UseGPU       bool `mapstructure:"USE_GPU"`
}

// Keys returns the names of all options in the order they are declared
func Keys() []string {
	t := reflect.TypeOf(Hyperparameters{})
	keys := make([]string, t.NumField())
	for i := range keys {
		keys[i] = t.Field(i).Tag.Get("mapstructure")
	}
	return keys
}

// Load reads, decodes, and validates the JSON hyperparameter file at
// path. Missing options, unknown options, and values of the wrong type
// are errors.
func Load(path string) (Hyperparameters, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Hyperparameters{}, fmt.Errorf("load: could not read %v: %v",
			path, err)
	}

	var missing []string
	for _, key := range Keys() {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Hyperparameters{}, fmt.Errorf("load: missing options %v",
			strings.Join(missing, ", "))
	}

	var h Hyperparameters
	err := v.UnmarshalExact(&h, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = false
		dc.DecodeHook = wholeNumberHook
	})
	if err != nil {
		return Hyperparameters{}, fmt.Errorf("load: %v", err)
	}

	if err := h.Validate(); err != nil {
		return Hyperparameters{}, fmt.Errorf("load: %v", err)
	}
	return h, nil
}

// wholeNumberHook rejects JSON numbers with a fractional part or a
// negative sign where an integer option is expected, which mapstructure
// would otherwise truncate
func wholeNumberHook(from, to reflect.Type, data interface{}) (interface{},
	error) {
	f, ok := data.(float64)
	if !ok {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int64:
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("expected an integer, got %v", f)
		}
	case reflect.Uint64:
		if f != math.Trunc(f) || f < 0 {
			return nil, fmt.Errorf("expected an unsigned integer, got %v", f)
		}
	}
	return data, nil
}

// Validate returns an error if any option is out of range
func (h Hyperparameters) Validate() error {
	positive := map[string]int{
		"TOTAL_TIMESTEPS": h.TotalTimesteps,
		"N_STEPS":         h.NSteps,
		"UPDATE_STEPS":    h.UpdateSteps,
		"UPDATE_TARGET":   h.UpdateTarget,
		"BATCH_SIZE":      h.BatchSize,
		"BUFFER_SIZE":     h.BufferSize,
		"EXPLORE":         h.Explore,
		"PLOT_INTERVAL":   h.PlotInterval,
	}
	for _, key := range Keys() {
		if value, ok := positive[key]; ok && value < 1 {
			return fmt.Errorf("validate: %v must be >= 1 \n\twant(>=1)"+
				"\n\thave(%v)", key, value)
		}
	}

	switch {
	case h.RunName == "":
		return fmt.Errorf("validate: RUN_NAME must not be empty")

	case h.RunName != filepath.Base(h.RunName):
		return fmt.Errorf("validate: RUN_NAME must not contain a path "+
			"separator \n\thave(%v)", h.RunName)

	case h.BatchSize >= h.BufferSize:
		return fmt.Errorf("validate: BATCH_SIZE must be < BUFFER_SIZE "+
			"\n\twant(<%v)\n\thave(%v)", h.BufferSize, h.BatchSize)

	case h.Gamma < 0 || h.Gamma > 1:
		return fmt.Errorf("validate: GAMMA must be in [0, 1] "+
			"\n\twant([0, 1])\n\thave(%v)", h.Gamma)

	case h.InitLR <= 0:
		return fmt.Errorf("validate: INIT_LR must be > 0 \n\twant(>0)"+
			"\n\thave(%v)", h.InitLR)

	case h.IsLRDecay && h.LRDecay < 0:
		return fmt.Errorf("validate: LR_DECAY must be >= 0 \n\twant(>=0)"+
			"\n\thave(%v)", h.LRDecay)

	case h.FinEps < 0 || h.FinEps > h.InitEps || h.InitEps > 1:
		return fmt.Errorf("validate: epsilons must satisfy 0 <= FIN_EPS <= "+
			"INIT_EPS <= 1 \n\thave(INIT_EPS: %v, FIN_EPS: %v)", h.InitEps,
			h.FinEps)

	case h.PER && h.PERAlpha < 0:
		return fmt.Errorf("validate: PER_ALPHA must be >= 0 \n\twant(>=0)"+
			"\n\thave(%v)", h.PERAlpha)

	case h.PER && (h.PERBeta < 0 || h.PERBeta > 1):
		return fmt.Errorf("validate: PER_BETA must be in [0, 1] "+
			"\n\twant([0, 1])\n\thave(%v)", h.PERBeta)
	}
	return nil
}

// Replay returns the experience replay configuration of the run
func (h Hyperparameters) Replay() expreplay.Config {
	return expreplay.Config{
		Capacity:    h.BufferSize,
		MinCapacity: h.BatchSize,
		BatchSize:   h.BatchSize,
		Prioritized: h.PER,
		Alpha:       h.PERAlpha,
		Beta:        h.PERBeta,
		Epsilon:     expreplay.DefaultEpsilon,
	}
}

// Schedule returns the schedule configuration of the run. Evaluation
// happens every PLOT_INTERVAL episodes.
func (h Hyperparameters) Schedule() schedule.Config {
	return schedule.Config{
		TotalSteps:   h.TotalTimesteps,
		InitEpsilon:  h.InitEps,
		FinalEpsilon: h.FinEps,
		Explore:      h.Explore,
		Prioritized:  h.PER,
		InitBeta:     h.PERBeta,
		InitLR:       h.InitLR,
		DecayLR:      h.IsLRDecay,
		LRDecay:      h.LRDecay,
		BatchSize:    h.BatchSize,
		UpdateEvery:  h.UpdateSteps,
		EvalEvery:    h.PlotInterval,
	}
}

// Network returns the Q-network configuration of the run for an
// environment with the given number of state features and actions
func (h Hyperparameters) Network(features, actions int) network.Config {
	return network.NewConfig(features, actions, h.BatchSize, h.Dueling,
		h.InitLR)
}

// Archive copies the hyperparameter file at path verbatim into dir,
// keeping its file name
func Archive(path, dir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("archive: %v", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("archive: %v", err)
	}

	out := filepath.Join(dir, filepath.Base(path))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	return nil
}
