package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_FirstWaitIsImmediate(t *testing.T) {
	th := NewThrottle(time.Hour)

	start := time.Now()
	require.NoError(t, th.Wait(context.Background()))
	require.NoError(t, th.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottle_SpacesActions(t *testing.T) {
	th := NewThrottle(30 * time.Millisecond)

	require.NoError(t, th.Wait(context.Background()))
	th.Done()
	start := time.Now()
	require.NoError(t, th.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestThrottle_DelayCountsFromDone(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)

	require.NoError(t, th.Wait(context.Background()))
	// an action that outlasts the delay
	time.Sleep(80 * time.Millisecond)
	th.Done()

	start := time.Now()
	require.NoError(t, th.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestThrottle_Cancelled(t *testing.T) {
	th := NewThrottle(time.Hour)
	th.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, th.Wait(ctx), context.Canceled)
}
