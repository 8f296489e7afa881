package tustinpid

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

// PlantConfig describes the simulated first order plant.
type PlantConfig struct {
	Gain   float64 `json:"gain" yaml:"gain"`
	TauSec float64 `json:"tau_sec" yaml:"tau_sec"`
}

// Config is the serialized tuning of a three channel controller.
type Config struct {
	KP  float64 `json:"kp" yaml:"kp"`
	KI  float64 `json:"ki" yaml:"ki"`
	KD  float64 `json:"kd" yaml:"kd"`
	Tau float64 `json:"tau" yaml:"tau"`

	// one value applies to every channel, three set them per channel, none means unbounded
	IntegralMin []float64 `json:"integral_min,omitempty" yaml:"integral_min,omitempty"`
	IntegralMax []float64 `json:"integral_max,omitempty" yaml:"integral_max,omitempty"`

	SamplePeriodSec float64 `json:"sample_period_sec" yaml:"sample_period_sec"`
	Enabled         bool    `json:"enabled" yaml:"enabled"`

	Plant *PlantConfig `json:"plant,omitempty" yaml:"plant,omitempty"`
}

// DefaultConfig is a step response tuning that settles a unit lag in a few seconds.
func DefaultConfig() *Config {
	return &Config{
		KP:              2,
		KI:              2,
		KD:              1,
		Tau:             0.5,
		IntegralMin:     []float64{-10},
		IntegralMax:     []float64{10},
		SamplePeriodSec: 0.05,
		Plant:           &PlantConfig{Gain: 1, TauSec: 1},
	}
}

// LoadConfig reads a yaml tuning file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %s", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %s", path)
	}
	if _, err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config. It has no dependencies.
func (cfg *Config) Validate(path string) ([]string, error) {
	var err error
	if cfg.SamplePeriodSec == 0 {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "sample_period_sec"))
	}
	if cfg.Plant != nil && cfg.Plant.TauSec < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.New("plant tau_sec must not be negative")))
	}
	if err != nil {
		return nil, err
	}

	params, perr := cfg.Parameters()
	if perr == nil {
		perr = validate(params, cfg.Sampling())
	}
	if perr != nil {
		return nil, utils.NewConfigValidationError(path, perr)
	}
	return nil, nil
}

// SamplePeriod rounds the configured period to the nanosecond.
func (cfg *Config) SamplePeriod() time.Duration {
	return time.Duration(math.Round(cfg.SamplePeriodSec * float64(time.Second)))
}

func (cfg *Config) Sampling() Sampling {
	return Sampling{Period: cfg.SamplePeriod()}
}

// Parameters converts the config to controller parameters.
func (cfg *Config) Parameters() (Parameters[Vector3], error) {
	lo, err := bound(cfg.IntegralMin, math.Inf(-1))
	if err != nil {
		return Parameters[Vector3]{}, errors.Wrap(err, "integral_min")
	}
	hi, err := bound(cfg.IntegralMax, math.Inf(1))
	if err != nil {
		return Parameters[Vector3]{}, errors.Wrap(err, "integral_max")
	}
	return Parameters[Vector3]{
		KP:          cfg.KP,
		KI:          cfg.KI,
		KD:          cfg.KD,
		Tau:         cfg.Tau,
		IntegralMin: lo,
		IntegralMax: hi,
	}, nil
}

func bound(vals []float64, def float64) (Vector3, error) {
	switch len(vals) {
	case 0:
		return Fill(def), nil
	case 1:
		return Fill(vals[0]), nil
	case 3:
		return Vector3{vals[0], vals[1], vals[2]}, nil
	default:
		return Vector3{}, errors.Errorf("need 1 or 3 values, got %d", len(vals))
	}
}

// NewController builds the controller the config describes, enabled if the config says so.
func (cfg *Config) NewController() (*Controller[Vector3], error) {
	params, err := cfg.Parameters()
	if err != nil {
		return nil, err
	}
	ctrl, err := NewController(params, cfg.Sampling())
	if err != nil {
		return nil, err
	}
	if cfg.Enabled {
		ctrl.Enable()
	}
	return ctrl, nil
}

// NewPlant builds the simulated plant, a unit gain lag with a one second time constant if none is configured.
func (cfg *Config) NewPlant() (*FirstOrderLag[Vector3], error) {
	pc := PlantConfig{Gain: 1, TauSec: 1}
	if cfg.Plant != nil {
		pc = *cfg.Plant
	}
	return NewFirstOrderLag[Vector3](pc.Gain, pc.TauSec, cfg.SamplePeriod())
}
