package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// StopFunc adapts a plain function to Stoppable
type StopFunc func(ctx context.Context) error

func (f StopFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Graceful blocks until one of signals arrives, then stops every component in
// order under a shared timeout. Errors are logged and do not stop the sequence.
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, components ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received", "components", len(components))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := 0
	for i, c := range components {
		if err := c.Shutdown(ctx); err != nil {
			failed++
			log.Warn("component shutdown returned error", "index", i, "err", err)
		}
	}

	if failed > 0 {
		log.Warn("graceful shutdown completed with errors", "failed", failed)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
