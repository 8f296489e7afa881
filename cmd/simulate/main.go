package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"

	"github.com/erh/tustinpid"
)

var flags = []cli.Flag{
	&cli.StringFlag{Name: "config", Usage: "yaml tuning file, defaults are used for anything it leaves out"},
	&cli.IntFlag{Name: "samples", Value: 1000, Usage: "number of samples to simulate"},
	&cli.Float64Flag{Name: "setpoint", Value: 1, Usage: "step height applied to every channel from sample 1 on"},
	&cli.Float64Flag{Name: "plant-gain", Usage: "override the plant gain"},
	&cli.Float64Flag{Name: "plant-tau", Usage: "override the plant time constant in seconds"},
	&cli.StringFlag{Name: "chart", Usage: "write a chart of the step response here (.svg, .png)"},
	&cli.IntFlag{Name: "channel", Usage: "channel to chart and analyze"},
	&cli.BoolFlag{Name: "print", Usage: "print every command sample"},
	&cli.BoolFlag{Name: "realtime", Usage: "pace samples at the sample period"},
}

func main() {
	err := run(context.Background(), os.Stdout, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, args []string) error {
	app := cli.NewApp()
	app.Name = "tustinpid-simulate"
	app.Usage = "step response of the three channel PID around a first order plant"
	app.Writer = w
	app.Flags = flags
	app.Action = func(c *cli.Context) error {
		return simulate(c, w, golog.NewDevelopmentLogger("simulate"))
	}
	return app.RunContext(ctx, args)
}

func simulate(c *cli.Context, w io.Writer, logger golog.Logger) error {
	cfg := tustinpid.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = tustinpid.LoadConfig(path)
		if err != nil {
			return err
		}
	}
	if cfg.Plant == nil {
		cfg.Plant = &tustinpid.PlantConfig{Gain: 1, TauSec: 1}
	}
	if c.IsSet("plant-gain") {
		cfg.Plant.Gain = c.Float64("plant-gain")
	}
	if c.IsSet("plant-tau") {
		cfg.Plant.TauSec = c.Float64("plant-tau")
	}
	cfg.Enabled = true

	ctrl, err := cfg.NewController()
	if err != nil {
		return err
	}
	plant, err := cfg.NewPlant()
	if err != nil {
		return err
	}
	logger.Infof("%v plant gain: %v tau: %v", ctrl, cfg.Plant.Gain, cfg.Plant.TauSec)

	n := c.Int("samples")
	if n <= 0 {
		return fmt.Errorf("samples must be positive, got %d", n)
	}
	setpoint := tustinpid.StepInput(tustinpid.Fill(c.Float64("setpoint")))

	var samples []tustinpid.Sample[tustinpid.Vector3]
	if c.Bool("realtime") {
		samples, err = runRealtime(c.Context, cfg, ctrl, plant, setpoint, n, logger)
		if err != nil {
			return err
		}
	} else {
		samples = tustinpid.Simulate(ctrl, plant, setpoint, n)
	}

	if c.Bool("print") {
		for _, s := range samples {
			fmt.Fprintln(w, s.Command)
		}
	}

	channel := c.Int("channel")
	res, err := tustinpid.Analyze(samples, channel)
	if err != nil {
		return err
	}
	logger.Infof("channel %d final: %.4f peak: %.4f overshoot: %.1f%% rise: %d settling: %d",
		channel, res.Final, res.Peak, res.Overshoot*100, res.RiseSample, res.SettlingSample)

	if path := c.String("chart"); path != "" {
		if err := tustinpid.SaveChart(path, "step response", samples, channel); err != nil {
			return err
		}
		logger.Infof("chart written to %s", path)
	}
	return nil
}

// runRealtime steps the same loop as Simulate, one sample per period.
func runRealtime(
	ctx context.Context,
	cfg *tustinpid.Config,
	ctrl *tustinpid.Controller[tustinpid.Vector3],
	plant *tustinpid.FirstOrderLag[tustinpid.Vector3],
	setpoint func(int) tustinpid.Vector3,
	n int,
	logger golog.Logger,
) ([]tustinpid.Sample[tustinpid.Vector3], error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples := make([]tustinpid.Sample[tustinpid.Vector3], 0, n)
	err := tustinpid.RunLoop(ctx, cfg.SamplePeriod(), logger, func(ctx context.Context) error {
		k := len(samples)
		s := tustinpid.Sample[tustinpid.Vector3]{K: k, Setpoint: setpoint(k), Measured: plant.Output()}
		s.Command = ctrl.Step(s.Setpoint, s.Measured)
		s.Output = plant.Step(s.Command)
		samples = append(samples, s)
		if len(samples) >= n {
			cancel()
		}
		return nil
	})
	return samples, err
}
