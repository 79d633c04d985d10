// Package ratelimit throttles the public check-in and pickup endpoints per
// client. Redis backs the limit when configured so several server processes
// share one budget; otherwise an in-process bucket is used.
package ratelimit

import "context"

// Limiter decides whether one more request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
