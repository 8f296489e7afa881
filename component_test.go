package tustinpid

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/resource"
)

func newTestComponent(t *testing.T) *pidComponent {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Enabled = true
	c, err := newComponent(resource.NewName(generic.API, "pid"), cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestComponentStep(t *testing.T) {
	ctx := context.Background()
	c := newTestComponent(t)
	defer c.Close(ctx)

	test.That(t, c.Name().ShortName(), test.ShouldEqual, "pid")

	res, err := c.DoCommand(ctx, map[string]interface{}{
		"command":  "step",
		"setpoint": []interface{}{1.0, 1.0, 1.0},
		"measured": map[string]interface{}{"x": 0.0, "y": 0.0},
	})
	test.That(t, err, test.ShouldBeNil)
	cmd := res["command"].([]interface{})
	test.That(t, cmd, test.ShouldHaveLength, 3)
	for _, v := range cmd {
		test.That(t, v.(float64), test.ShouldAlmostEqual, 2+0.05+2/1.05, testTheta)
	}

	state, err := c.DoCommand(ctx, map[string]interface{}{"command": "state"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state["enabled"], test.ShouldEqual, true)
	test.That(t, state["running"], test.ShouldEqual, false)
	test.That(t, state["previous_error"], test.ShouldResemble, []interface{}{1.0, 1.0, 1.0})

	_, err = c.DoCommand(ctx, map[string]interface{}{"command": "disable"})
	test.That(t, err, test.ShouldBeNil)
	res, err = c.DoCommand(ctx, map[string]interface{}{
		"command":  "step",
		"setpoint": []interface{}{5.0, 5.0, 5.0},
		"measured": []interface{}{0.0, 0.0, 0.0},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res["command"], test.ShouldResemble, []interface{}{0.0, 0.0, 0.0})

	after, err := c.DoCommand(ctx, map[string]interface{}{"command": "state"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, after["previous_integral"], test.ShouldResemble, state["previous_integral"])

	_, err = c.DoCommand(ctx, map[string]interface{}{"command": "reset"})
	test.That(t, err, test.ShouldBeNil)
	after, err = c.DoCommand(ctx, map[string]interface{}{"command": "state"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, after["previous_error"], test.ShouldResemble, []interface{}{0.0, 0.0, 0.0})
}

func TestComponentBadCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestComponent(t)
	defer c.Close(ctx)

	for _, cmd := range []map[string]interface{}{
		{},
		{"command": "fly"},
		{"command": "step", "setpoint": []interface{}{1.0}},
		{"command": "step", "setpoint": []interface{}{1.0, 2.0, "3"}, "measured": []interface{}{0.0, 0.0, 0.0}},
		{"command": "step", "setpoint": "up", "measured": []interface{}{0.0, 0.0, 0.0}},
		{"command": "set_setpoint", "setpoint": map[string]interface{}{"x": true}},
	} {
		_, err := c.DoCommand(ctx, cmd)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestComponentLoop(t *testing.T) {
	ctx := context.Background()
	c := newTestComponent(t)

	_, err := c.DoCommand(ctx, map[string]interface{}{
		"command":  "set_setpoint",
		"setpoint": map[string]interface{}{"x": 1.0, "y": 2.0, "z": -1.0},
	})
	test.That(t, err, test.ShouldBeNil)

	_, err = c.DoCommand(ctx, map[string]interface{}{"command": "start"})
	test.That(t, err, test.ShouldBeNil)
	// a second start is a no-op
	_, err = c.DoCommand(ctx, map[string]interface{}{"command": "start"})
	test.That(t, err, test.ShouldBeNil)

	time.Sleep(300 * time.Millisecond)

	_, err = c.DoCommand(ctx, map[string]interface{}{
		"command":  "step",
		"setpoint": []interface{}{0.0, 0.0, 0.0},
		"measured": []interface{}{0.0, 0.0, 0.0},
	})
	test.That(t, err, test.ShouldEqual, errLoopRunning)

	state, err := c.DoCommand(ctx, map[string]interface{}{"command": "state"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state["running"], test.ShouldEqual, true)
	test.That(t, state["setpoint"], test.ShouldResemble, []interface{}{1.0, 2.0, -1.0})

	_, err = c.DoCommand(ctx, map[string]interface{}{"command": "stop"})
	test.That(t, err, test.ShouldBeNil)

	state, err = c.DoCommand(ctx, map[string]interface{}{"command": "state"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state["running"], test.ShouldEqual, false)
	out := state["output"].([]interface{})
	test.That(t, out[0].(float64), test.ShouldBeGreaterThan, 0)
	test.That(t, out[1].(float64), test.ShouldBeGreaterThan, out[0].(float64))
	test.That(t, out[2].(float64), test.ShouldBeLessThan, 0)

	test.That(t, c.Close(ctx), test.ShouldBeNil)
}
