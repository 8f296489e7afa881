package tustinpid

// Sample is one index of a closed loop run.
type Sample[V Channels[V]] struct {
	K        int
	Setpoint V
	Measured V
	Command  V
	Output   V
}

// StepInput is zero at k == 0 and level from then on.
func StepInput[V Channels[V]](level V) func(k int) V {
	return func(k int) V {
		var zero V
		if k == 0 {
			return zero
		}
		return level
	}
}

// Simulate closes the loop around plant for n samples. The controller sees the plant's
// output from the previous sample, so the loop has one sample of delay.
func Simulate[V Channels[V]](ctrl *Controller[V], plant *FirstOrderLag[V], setpoint func(k int) V, n int) []Sample[V] {
	samples := make([]Sample[V], 0, n)
	for k := 0; k < n; k++ {
		s := Sample[V]{K: k, Setpoint: setpoint(k), Measured: plant.Output()}
		s.Command = ctrl.Step(s.Setpoint, s.Measured)
		s.Output = plant.Step(s.Command)
		samples = append(samples, s)
	}
	return samples
}
