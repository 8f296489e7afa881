package tustinpid

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Channels is what the controller needs from a signal: per channel arithmetic and clamping.
// The zero value must be the all-zero signal.
type Channels[V any] interface {
	Add(V) V
	Sub(V) V
	Scale(float64) V
	Clamp(lo, hi V) V
	Components() []float64
}

// Parameters are the tuning values, fixed for the controller's lifetime.
type Parameters[V Channels[V]] struct {
	KP, KI, KD float64

	// Tau is the derivative filter time constant, 1/cutoff.
	Tau float64

	// anti-windup bounds on the integral accumulator
	IntegralMin, IntegralMax V
}

// Sampling is the fixed period every discretization uses.
type Sampling struct {
	Period time.Duration
}

// Memory is what the controller carries from one sample to the next.
type Memory[V Channels[V]] struct {
	PreviousError      V
	PreviousIntegral   V
	PreviousDerivative V
}

// Controller is a PID with trapezoidal integration, integrator clamping and a
// bilinear low-pass filtered derivative. It is not safe for concurrent use.
type Controller[V Channels[V]] struct {
	// config
	params Parameters[V]
	t      float64

	// state
	memory  Memory[V]
	enabled bool
}

// NewController validates the configuration and returns a disabled controller with zeroed memory.
func NewController[V Channels[V]](params Parameters[V], sampling Sampling) (*Controller[V], error) {
	if err := validate(params, sampling); err != nil {
		return nil, err
	}
	return &Controller[V]{
		params: params,
		t:      sampling.Period.Seconds(),
	}, nil
}

func validate[V Channels[V]](params Parameters[V], sampling Sampling) error {
	var err error
	if sampling.Period <= 0 {
		err = multierr.Append(err, errors.Errorf("sample period must be positive, got %v", sampling.Period))
	}
	gains := []struct {
		name string
		v    float64
	}{{"kp", params.KP}, {"ki", params.KI}, {"kd", params.KD}}
	for _, g := range gains {
		if !finite(g.v) {
			err = multierr.Append(err, errors.Errorf("gain %s must be finite, got %v", g.name, g.v))
		}
	}
	if !finite(params.Tau) || params.Tau < 0 {
		err = multierr.Append(err, errors.Errorf("tau must be finite and non-negative, got %v", params.Tau))
	}

	lo, hi := params.IntegralMin.Components(), params.IntegralMax.Components()
	for i := range lo {
		// NaN fails both comparisons, so test for the good case
		if !(lo[i] <= hi[i]) {
			err = multierr.Append(err, errors.Errorf("integral bounds on channel %d: min %v above max %v", i, lo[i], hi[i]))
		}
	}
	return err
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Enable turns output on. Memory is kept.
func (c *Controller[V]) Enable() {
	c.enabled = true
}

// Disable turns output off. Memory is kept, so enabling again resumes where it stopped.
func (c *Controller[V]) Disable() {
	c.enabled = false
}

func (c *Controller[V]) Enabled() bool {
	return c.enabled
}

// Memory returns a copy of the controller's state.
func (c *Controller[V]) Memory() Memory[V] {
	return c.memory
}

// Reset zeroes the memory. The enable flag is left as is.
func (c *Controller[V]) Reset() {
	c.memory = Memory[V]{}
}

// Parameters returns the tuning the controller was built with.
func (c *Controller[V]) Parameters() Parameters[V] {
	return c.params
}

// Step computes one command from the setpoint and the measured value and advances memory.
// While disabled it returns zero and memory is untouched.
func (c *Controller[V]) Step(setpoint, measured V) V {
	var zero V
	if !c.enabled {
		return zero
	}

	p := &c.params
	m := &c.memory

	e := setpoint.Sub(measured)

	prop := e.Scale(p.KP)

	integral := e.Add(m.PreviousError).
		Scale(p.KI * c.t / 2).
		Add(m.PreviousIntegral).
		Clamp(p.IntegralMin, p.IntegralMax)

	deriv := e.Sub(m.PreviousError).
		Scale(2 * p.KD).
		Add(m.PreviousDerivative.Scale(2*p.Tau - c.t)).
		Scale(1 / (2*p.Tau + c.t))

	m.PreviousError = e
	m.PreviousIntegral = integral
	m.PreviousDerivative = deriv

	return prop.Add(integral).Add(deriv)
}

func (c *Controller[V]) String() string {
	return fmt.Sprintf("pid kp: %v ki: %v kd: %v tau: %v T: %v enabled: %v",
		c.params.KP, c.params.KI, c.params.KD, c.params.Tau, c.t, c.enabled)
}
