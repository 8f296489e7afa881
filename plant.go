package tustinpid

import (
	"time"

	"github.com/pkg/errors"
)

// FirstOrderLag simulates the plant gain/(tau*s + 1), discretized with the bilinear transform.
// It only keeps the previous input and output.
type FirstOrderLag[V Channels[V]] struct {
	gain, tau, t float64

	prevInput, prevOutput V
}

// NewFirstOrderLag builds a plant at rest.
func NewFirstOrderLag[V Channels[V]](gain, tau float64, period time.Duration) (*FirstOrderLag[V], error) {
	if period <= 0 {
		return nil, errors.Errorf("plant sample period must be positive, got %v", period)
	}
	if !finite(gain) {
		return nil, errors.Errorf("plant gain must be finite, got %v", gain)
	}
	if !finite(tau) || tau < 0 {
		return nil, errors.Errorf("plant tau must be finite and non-negative, got %v", tau)
	}
	return &FirstOrderLag[V]{gain: gain, tau: tau, t: period.Seconds()}, nil
}

// Step feeds one input sample and returns the new output.
func (p *FirstOrderLag[V]) Step(u V) V {
	y := u.Add(p.prevInput).
		Scale(p.gain * p.t).
		Sub(p.prevOutput.Scale(p.t - 2*p.tau)).
		Scale(1 / (2*p.tau + p.t))

	p.prevInput = u
	p.prevOutput = y
	return y
}

// Output is the most recent output, zero before the first Step.
func (p *FirstOrderLag[V]) Output() V {
	return p.prevOutput
}

func (p *FirstOrderLag[V]) Reset() {
	var zero V
	p.prevInput = zero
	p.prevOutput = zero
}
