package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context that is cancelled on SIGINT or
// SIGTERM, so a long scan stops cleanly and its scratch files are removed.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
