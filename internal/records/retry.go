package records

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

// Retry re-runs transport failures a bounded number of times with doubling
// backoff. The zero value uses three attempts and a 200ms initial delay.
type Retry struct {
	Attempts int
	Backoff  time.Duration
	Logger   *slog.Logger

	sleep func(context.Context, time.Duration) error
}

// Do invokes fn until it succeeds, returns a non-retryable error, the
// attempts run out, or ctx is done.
func (r Retry) Do(ctx context.Context, kind Kind, fn func(context.Context) error) error {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		r.logger().Warn("fetch failed, retrying",
			slog.String("kind", string(kind)),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
		backoff *= 2
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return &TransportError{Kind: kind, Attempts: attempts, Err: tErr.Err}
	}
	return &TransportError{Kind: kind, Attempts: attempts, Err: err}
}

func (r Retry) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
