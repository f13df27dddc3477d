package workers

import (
	"context"
	"time"
)

// StartJanitor runs fn every interval until ctx ends. Used for housekeeping
// that must not sit on the request path (e.g. dropping idle rate limiters).
func StartJanitor(ctx context.Context, every time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}
