package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// WaitReady polls client until its health check passes. Clients without a
// health check are considered ready. A model server that is still loading
// weights typically refuses connections for a while after start.
func WaitReady(ctx context.Context, client LLMClient, attempts uint, delay time.Duration, logger *slog.Logger) error {
	hc, ok := client.(HealthChecker)
	if !ok {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(
		func() error {
			return hc.HealthCheck(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Info("waiting for model server", "provider", client.Name(), "attempt", n+1, "error", err)
		}),
	)
}
