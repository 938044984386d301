package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b := New(3, time.Minute)

	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(fail), errBackend)
	assert.False(t, b.Open())
	assert.NoError(t, b.Do(succeed))
	assert.False(t, b.Open())
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	b := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Do(fail), errBackend)
	}
	assert.True(t, b.Open())
	assert.ErrorIs(t, b.Do(succeed), ErrOpen)
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := New(3, time.Minute)

	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(fail), errBackend)
	require.NoError(t, b.Do(succeed))
	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(fail), errBackend)
	assert.False(t, b.Open())
}

func TestBreakerProbeAfterCooldown(t *testing.T) {
	now := time.Now()
	b := New(2, time.Minute)
	b.now = func() time.Time { return now }

	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(succeed), ErrOpen)

	now = now.Add(time.Minute)
	require.NoError(t, b.Do(succeed))
	assert.False(t, b.Open())
	assert.NoError(t, b.Do(succeed))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	now := time.Now()
	b := New(2, time.Minute)
	b.now = func() time.Time { return now }

	require.ErrorIs(t, b.Do(fail), errBackend)
	require.ErrorIs(t, b.Do(fail), errBackend)

	now = now.Add(time.Minute)
	require.ErrorIs(t, b.Do(fail), errBackend)
	assert.True(t, b.Open())
	assert.ErrorIs(t, b.Do(succeed), ErrOpen)
}

func TestBreakerZeroThresholdNeverTrips(t *testing.T) {
	b := New(0, time.Minute)
	for i := 0; i < 10; i++ {
		require.ErrorIs(t, b.Do(fail), errBackend)
	}
	assert.False(t, b.Open())
}
