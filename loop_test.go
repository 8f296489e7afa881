package tustinpid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestRunLoop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	err := RunLoop(ctx, time.Millisecond, logger, func(ctx context.Context) error {
		ticks++
		if ticks == 3 {
			return errors.New("sensor hiccup")
		}
		if ticks == 10 {
			cancel()
		}
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ticks, test.ShouldEqual, 10)
}

func TestRunLoopCanceledTick(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ticks := 0
	err := RunLoop(context.Background(), time.Millisecond, logger, func(ctx context.Context) error {
		ticks++
		return context.Canceled
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ticks, test.ShouldEqual, 1)
}

func TestRunLoopBadPeriod(t *testing.T) {
	err := RunLoop(context.Background(), 0, golog.NewTestLogger(t), func(ctx context.Context) error {
		return nil
	})
	test.That(t, err, test.ShouldNotBeNil)
}
