package tustinpid

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/resource"
)

var Model = resource.ModelNamespace("erh").WithFamily("control").WithModel("tustin-pid")

func init() {
	comp := resource.Registration[resource.Resource, *Config]{
		Constructor: func(
			ctx context.Context, deps resource.Dependencies, conf resource.Config, logger golog.Logger,
		) (resource.Resource, error) {
			newConf, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			c, err := newComponent(conf.ResourceName(), newConf, logger)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
	resource.RegisterComponent(generic.API, Model, comp)
}

var errLoopRunning = errors.New("simulated loop is running, stop it first")

// pidComponent exposes a three channel controller through DoCommand, optionally
// closing the loop around a simulated plant in the background.
type pidComponent struct {
	resource.Named
	resource.AlwaysRebuild

	cfg *Config

	mu          sync.Mutex
	ctrl        *Controller[Vector3]
	plant       *FirstOrderLag[Vector3]
	setpoint    Vector3
	lastCommand Vector3

	cancel    context.CancelFunc
	waitGroup sync.WaitGroup

	logger golog.Logger
}

func newComponent(name resource.Name, cfg *Config, logger golog.Logger) (*pidComponent, error) {
	ctrl, err := cfg.NewController()
	if err != nil {
		return nil, err
	}
	plant, err := cfg.NewPlant()
	if err != nil {
		return nil, err
	}
	logger.Debugf("created %v", ctrl)
	return &pidComponent{
		Named:  name.AsNamed(),
		cfg:    cfg,
		ctrl:   ctrl,
		plant:  plant,
		logger: logger,
	}, nil
}

func (c *pidComponent) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	name, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing string field \"command\"")
	}

	switch name {
	case "step":
		setpoint, err := vectorField(cmd, "setpoint")
		if err != nil {
			return nil, err
		}
		measured, err := vectorField(cmd, "measured")
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cancel != nil {
			return nil, errLoopRunning
		}
		c.lastCommand = c.ctrl.Step(setpoint, measured)
		return map[string]interface{}{"command": vectorValue(c.lastCommand)}, nil
	case "enable":
		c.mu.Lock()
		c.ctrl.Enable()
		c.mu.Unlock()
		return map[string]interface{}{}, nil
	case "disable":
		c.mu.Lock()
		c.ctrl.Disable()
		c.mu.Unlock()
		return map[string]interface{}{}, nil
	case "reset":
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cancel != nil {
			return nil, errLoopRunning
		}
		c.ctrl.Reset()
		c.plant.Reset()
		c.lastCommand = Vector3{}
		return map[string]interface{}{}, nil
	case "set_setpoint":
		setpoint, err := vectorField(cmd, "setpoint")
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.setpoint = setpoint
		c.mu.Unlock()
		return map[string]interface{}{}, nil
	case "start":
		c.mu.Lock()
		defer c.mu.Unlock()
		c.startLoopInLock()
		return map[string]interface{}{}, nil
	case "stop":
		c.stopLoop()
		return map[string]interface{}{}, nil
	case "state":
		c.mu.Lock()
		defer c.mu.Unlock()
		m := c.ctrl.Memory()
		return map[string]interface{}{
			"enabled":             c.ctrl.Enabled(),
			"running":             c.cancel != nil,
			"setpoint":            vectorValue(c.setpoint),
			"command":             vectorValue(c.lastCommand),
			"output":              vectorValue(c.plant.Output()),
			"previous_error":      vectorValue(m.PreviousError),
			"previous_integral":   vectorValue(m.PreviousIntegral),
			"previous_derivative": vectorValue(m.PreviousDerivative),
		}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}

func (c *pidComponent) startLoopInLock() {
	if c.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())

	c.waitGroup.Add(1)
	go func() {
		defer c.waitGroup.Done()
		err := RunLoop(ctx, c.cfg.SamplePeriod(), c.logger, c.loopTick)
		if err != nil {
			c.logger.Warn(err)
		}
	}()
}

func (c *pidComponent) loopTick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	measured := c.plant.Output()
	c.lastCommand = c.ctrl.Step(c.setpoint, measured)
	out := c.plant.Step(c.lastCommand)
	c.logger.Debugf("setpoint: %v measured: %v command: %v output: %v", c.setpoint, measured, c.lastCommand, out)
	return nil
}

func (c *pidComponent) stopLoop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.waitGroup.Wait()
	}
}

func (c *pidComponent) Close(ctx context.Context) error {
	c.stopLoop()
	return nil
}

// vectorField reads a vector given either as [x, y, z] or as {"x": .., "y": .., "z": ..}.
func vectorField(cmd map[string]interface{}, key string) (Vector3, error) {
	raw, ok := cmd[key]
	if !ok {
		return Vector3{}, fmt.Errorf("missing field %q", key)
	}

	var v r3.Vector
	switch t := raw.(type) {
	case []interface{}:
		if len(t) != 3 {
			return Vector3{}, fmt.Errorf("field %q needs 3 values, got %d", key, len(t))
		}
		vals := make([]float64, 3)
		for i, x := range t {
			f, ok := x.(float64)
			if !ok {
				return Vector3{}, fmt.Errorf("field %q value %d is not a number", key, i)
			}
			vals[i] = f
		}
		v = r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}
	case map[string]interface{}:
		for name, dst := range map[string]*float64{"x": &v.X, "y": &v.Y, "z": &v.Z} {
			if x, ok := t[name]; ok {
				f, ok := x.(float64)
				if !ok {
					return Vector3{}, fmt.Errorf("field %q.%s is not a number", key, name)
				}
				*dst = f
			}
		}
	default:
		return Vector3{}, fmt.Errorf("field %q must be a list or an x/y/z map", key)
	}
	return FromR3(v), nil
}

func vectorValue(v Vector3) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}
