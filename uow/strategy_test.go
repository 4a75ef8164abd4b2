package uow

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryStrategyRetriesTransientFaults(t *testing.T) {
	strategy := NewRetryStrategy(WithAttempts(3), WithDelay(0))

	attempts := 0
	err := strategy.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Transient(errors.New("connection reset"))
		}
		return nil
	})

	assert.Nil(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStrategyStopsOnNonTransientFaults(t *testing.T) {
	strategy := NewRetryStrategy(WithAttempts(5), WithDelay(0))

	boom := errors.New("constraint violated")
	attempts := 0
	err := strategy.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestRetryStrategyExhaustsAttempts(t *testing.T) {
	strategy := NewRetryStrategy(WithAttempts(2), WithDelay(0))

	attempts := 0
	err := strategy.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return Transient(errors.New("timeout"))
	})

	assert.NotNil(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 2, attempts)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Transient(errors.New("dropped"))))
	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.False(t, IsTransient(errors.New("dropped")))
}
