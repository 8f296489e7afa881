package tustinpid

import (
	"context"
	"errors"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/utils"
)

// RunLoop calls tick once per period until ctx is done. Tick errors are logged and the loop goes on.
func RunLoop(ctx context.Context, period time.Duration, logger golog.Logger, tick func(context.Context) error) error {
	if period <= 0 {
		return errors.New("loop period must be positive")
	}
	logger.Debugf("control loop starting, period %v", period)
	for {
		if ctx.Err() != nil {
			logger.Debug("control loop done")
			return nil
		}
		err := tick(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Warn(err)
		}
		if !utils.SelectContextOrWait(ctx, period) {
			logger.Debug("control loop done")
			return nil
		}
	}
}
