package jobs

import (
	"context"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
)

// Housekeeping returns the session purge and stale bank transfer jobs.
func Housekeeping(h *services.Housekeeping) []Job {
	return []Job{
		{Name: "purge_guest_sessions", Run: h.PurgeGuestSessions},
		{Name: "cancel_stale_bank_transfers", Run: h.CancelStaleBankTransfers},
	}
}

// SweepRateLimiter drops per-client limiters idle for longer than idle.
func SweepRateLimiter(rl *middlewares.RateLimiter, idle time.Duration) Job {
	return Job{
		Name: "sweep_rate_limiter",
		Run: func(context.Context) (int, error) {
			return rl.Sweep(idle), nil
		},
	}
}
