package tustinpid

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Field picks one signal out of a Sample.
type Field int

const (
	FieldSetpoint Field = iota
	FieldMeasured
	FieldCommand
	FieldOutput
)

const (
	finalWindow  = 0.1
	riseFraction = 0.9
	settlingBand = 0.02
)

// StepResponse summarizes one channel of a step run.
type StepResponse struct {
	Final float64
	Peak  float64

	// Overshoot is a fraction of the setpoint, 0 when the output never passes it.
	Overshoot        float64
	SteadyStateError float64

	// RiseSample is -1 if the output never reaches 90% of the setpoint.
	RiseSample     int
	SettlingSample int
}

// Channel extracts one channel of one field as a plain series.
func Channel[V Channels[V]](samples []Sample[V], channel int, field Field) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		var v V
		switch field {
		case FieldSetpoint:
			v = s.Setpoint
		case FieldMeasured:
			v = s.Measured
		case FieldCommand:
			v = s.Command
		default:
			v = s.Output
		}
		out[i] = v.Components()[channel]
	}
	return out
}

// Analyze computes step response figures for one channel, measured against the final setpoint.
func Analyze[V Channels[V]](samples []Sample[V], channel int) (StepResponse, error) {
	if len(samples) == 0 {
		return StepResponse{}, errors.New("no samples")
	}
	if n := len(samples[0].Output.Components()); channel < 0 || channel >= n {
		return StepResponse{}, errors.Errorf("channel %d out of range, have %d", channel, n)
	}

	output := Channel(samples, channel, FieldOutput)
	target := samples[len(samples)-1].Setpoint.Components()[channel]

	window := int(math.Ceil(float64(len(output)) * finalWindow))
	res := StepResponse{
		Final:      stat.Mean(output[len(output)-window:], nil),
		Peak:       floats.Max(output),
		RiseSample: -1,
	}
	res.SteadyStateError = target - res.Final

	if target != 0 {
		res.Overshoot = math.Max(0, (res.Peak-target)/math.Abs(target))
	}

	band := settlingBand * math.Abs(target)
	for i, y := range output {
		if res.RiseSample < 0 && target != 0 && y/target >= riseFraction {
			res.RiseSample = i
		}
		if math.Abs(y-target) > band {
			res.SettlingSample = i + 1
		}
	}
	return res, nil
}
