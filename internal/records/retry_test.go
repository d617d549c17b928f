package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDoublesBackoff(t *testing.T) {
	var waits []time.Duration
	r := Retry{Attempts: 3, Backoff: 100 * time.Millisecond, sleep: func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}}
	calls := 0
	err := r.Do(context.Background(), KindUnit, func(context.Context) error {
		calls++
		return &TransportError{Kind: KindUnit, Attempts: 1, Err: errors.New("down")}
	})

	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waits)
}

func TestRetryDefaults(t *testing.T) {
	calls := 0
	r := Retry{sleep: noSleep}
	err := r.Do(context.Background(), KindAd, func(context.Context) error {
		calls++
		return classify(KindAd, errors.New("eof"))
	})
	require.Error(t, err)
	assert.Equal(t, defaultAttempts, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := testRetry().Do(context.Background(), KindTenant, func(context.Context) error {
		calls++
		return ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := Retry{Attempts: 5, Backoff: time.Hour}
	err := r.Do(ctx, KindNotice, func(context.Context) error {
		calls++
		cancel()
		return classify(KindNotice, errors.New("reset"))
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := testRetry().Do(context.Background(), KindWallet, func(context.Context) error {
		calls++
		if calls == 1 {
			return classify(KindWallet, errors.New("reset"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(KindUnit, nil))
	assert.ErrorIs(t, classify(KindUnit, context.DeadlineExceeded), context.DeadlineExceeded)
	assert.False(t, Retryable(classify(KindUnit, context.DeadlineExceeded)))
	assert.True(t, Retryable(classify(KindUnit, errors.New("broken pipe"))))
	assert.True(t, transientSQLState("40001"))
	assert.True(t, transientSQLState("57P01"))
	assert.False(t, transientSQLState("23505"))
	assert.False(t, transientSQLState(""))
}
