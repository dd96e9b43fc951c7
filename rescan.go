package wxdata

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRescanner = (*client)(nil)

// AutoRescanner provides controls for automatic rescans.
type AutoRescanner interface {
	// AutoRescanOn begins periodic rescans of the scanned trees
	AutoRescanOn() error

	// AutoRescanOff stops periodic rescans
	AutoRescanOff() error
}

// AutoRescanOn begins periodic rescans.
func (c *client) AutoRescanOn() error {
	if c.options.autoRescanInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRescanInterval",
			Value:   c.options.autoRescanInterval,
			Message: "rescan interval must be positive",
		}
	}

	// Stop any running rescans first
	if err := c.AutoRescanOff(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCh = make(chan struct{})
	ticker := time.NewTicker(c.options.autoRescanInterval)
	c.rescanTicker = ticker

	ctx, cancel := context.WithCancel(context.Background())
	c.rescanCancel = cancel
	stopCh := c.stopCh

	go func(parentCtx context.Context) {
		for {
			select {
			case <-ticker.C:
				if len(c.Roots()) == 0 {
					continue
				}
				rescanCtx, rescanCancel := context.WithTimeout(parentCtx, constants.RescanContextTimeout)
				_, err := c.Rescan(rescanCtx)
				rescanCancel()

				if err != nil {
					if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
						if parentCtx.Err() != nil {
							return
						}
					}
					logging.OrDefault(c.options.logger).Error().Err(err).Msg("Auto-rescan failed")
				}
			case <-parentCtx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}(ctx)

	return nil
}

// AutoRescanOff stops periodic rescans.
func (c *client) AutoRescanOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rescanTicker != nil {
		c.rescanTicker.Stop()
		c.rescanTicker = nil
	}
	if c.rescanCancel != nil {
		c.rescanCancel()
		c.rescanCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	return nil
}
