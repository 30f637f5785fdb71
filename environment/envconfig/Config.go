// Package envconfig provides configuration structs for configuring
// toy environments from named presets. Environment configurations in
// this package are JSON serializable.
package envconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/samuelfneumann/mdpplayground/environment/toyenv"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
)

// PresetName stores the name of environments that can be configured
// with this package
type PresetName string

// Presets available for configuration
const (
	Discrete        PresetName = "Discrete"
	MultiDiscrete   PresetName = "MultiDiscrete"
	ContinuousLine  PresetName = "ContinuousLine"
	ContinuousPoint PresetName = "ContinuousPoint"
)

// Presets returns the names of all presets
func Presets() []PresetName {
	return []PresetName{Discrete, MultiDiscrete, ContinuousLine,
		ContinuousPoint}
}

// Config implements a specific configuration of a toy environment. Env
// starts from the meta-parameters of Preset, if any, and fields of Env
// given explicitly override those of the preset.
type Config struct {
	Preset PresetName    `json:"preset,omitempty"`
	Env    toyenv.Config `json:"env"`
}

// NewConfig returns the Config of a preset with the given seed
func NewConfig(preset PresetName, seed uint64) (Config, error) {
	c, err := presetConfig(preset)
	if err != nil {
		return Config{}, fmt.Errorf("newConfig: %w", err)
	}
	c.Seed = seed

	return Config{Preset: preset, Env: c}, nil
}

// Load reads a JSON Config from r. Unknown fields are an error.
func Load(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	// The preset is read first so that the remaining fields overlay it
	var header struct {
		Preset PresetName      `json:"preset"`
		Env    json.RawMessage `json:"env"`
	}
	if err := decodeStrict(data, &header); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	c := Config{Preset: header.Preset}
	if header.Preset != "" {
		c.Env, err = presetConfig(header.Preset)
		if err != nil {
			return Config{}, fmt.Errorf("load: %w", err)
		}
	}
	if len(header.Env) > 0 {
		if err := decodeStrict(header.Env, &c.Env); err != nil {
			return Config{}, fmt.Errorf("load: env: %w", err)
		}
	}

	return c, nil
}

// Save writes c to w as indented JSON
func (c Config) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(logger *slog.Logger) (*toyenv.ToyEnv, ts.TimeStep,
	error) {
	e, step, err := toyenv.New(c.Env, logger)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v: %w", c.Preset,
			err)
	}
	return e, step, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// presetConfig returns the meta-parameters of a preset
func presetConfig(preset PresetName) (toyenv.Config, error) {
	switch preset {
	case Discrete:
		return CreateDiscrete(8, 3, 1), nil

	case MultiDiscrete:
		return CreateMultiDiscrete(), nil

	case ContinuousLine:
		return CreateContinuousLine(2, 3), nil

	case ContinuousPoint:
		return CreateContinuousPoint(2), nil
	}

	return toyenv.Config{}, fmt.Errorf("no such preset %v", preset)
}

// CreateDiscrete is a factory for the meta-parameters of a completely
// connected discrete environment with the given number of states and
// actions, rewardable sequence length, and reward delay
func CreateDiscrete(size, sequenceLength, delay int) toyenv.Config {
	return toyenv.Config{
		StateSpaceType:       toyenv.Discrete,
		ActionSpaceType:      toyenv.Discrete,
		StateSpaceSize:       []int{size},
		ActionSpaceSize:      []int{size},
		SequenceLength:       sequenceLength,
		Delay:                delay,
		RewardDensity:        0.25,
		TerminalStateDensity: 0.25,
		CompletelyConnected:  true,
		Horizon:              100,
	}
}

// CreateMultiDiscrete is a factory for the meta-parameters of a
// discrete environment with one relevant and two irrelevant dimensions
// and noisy transitions
func CreateMultiDiscrete() toyenv.Config {
	return toyenv.Config{
		StateSpaceType:             toyenv.Discrete,
		ActionSpaceType:            toyenv.Discrete,
		StateSpaceSize:             []int{8, 4, 4},
		ActionSpaceSize:            []int{8, 4, 4},
		StateSpaceRelevantIndices:  []int{0},
		ActionSpaceRelevantIndices: []int{0},
		SequenceLength:             2,
		RewardDensity:              0.25,
		MakeDenser:                 true,
		TerminalStateDensity:       0.25,
		CompletelyConnected:        true,
		TransitionNoise:            0.1,
		Horizon:                    100,
	}
}

// CreateContinuousLine is a factory for the meta-parameters of a
// continuous environment rewarded for moving along a line
func CreateContinuousLine(dims, sequenceLength int) toyenv.Config {
	return toyenv.Config{
		StateSpaceType:          toyenv.Continuous,
		ActionSpaceType:         toyenv.Continuous,
		StateSpaceDim:           dims,
		ActionSpaceDim:          dims,
		StateSpaceMax:           10,
		ActionSpaceMax:          1,
		SequenceLength:          sequenceLength,
		TransitionDynamicsOrder: 1,
		RewardFunction:          toyenv.MoveAlongALine,
		Horizon:                 100,
	}
}

// CreateContinuousPoint is a factory for the meta-parameters of a
// continuous environment rewarded for reaching the origin, with a
// terminal region around it
func CreateContinuousPoint(dims int) toyenv.Config {
	origin := make([]float64, dims)
	return toyenv.Config{
		StateSpaceType:          toyenv.Continuous,
		ActionSpaceType:         toyenv.Continuous,
		StateSpaceDim:           dims,
		ActionSpaceDim:          dims,
		StateSpaceMax:           10,
		ActionSpaceMax:          1,
		SequenceLength:          1,
		TransitionDynamicsOrder: 1,
		RewardFunction:          toyenv.MoveToAPoint,
		TargetPoint:             origin,
		TargetRadius:            0.5,
		MakeDenser:              true,
		TerminalStates:          [][]float64{origin},
		TermStateEdge:           0.5,
		Horizon:                 200,
	}
}
