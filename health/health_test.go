// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func healthy() Monitor {
	var b Binary
	b.MarkHealthy()
	return &b
}

func TestBinary_Healthy(t *testing.T) {
	t.Run("will return unhealthy", func(t *testing.T) {
		t.Run("if it is the zero value", func(t *testing.T) {
			var b Binary

			ok, err := b.Healthy(context.Background())
			require.NoError(t, err)
			require.False(t, ok)
		})

		t.Run("if it was marked unhealthy after being healthy", func(t *testing.T) {
			var b Binary
			b.MarkHealthy()
			b.MarkUnhealthy()

			ok, err := b.Healthy(context.Background())
			require.NoError(t, err)
			require.False(t, ok)
		})
	})
}

func TestAndMonitor_Healthy(t *testing.T) {
	healthErr := errors.New("store unreachable")

	testCases := []struct {
		Name     string
		Monitors []Monitor
		Healthy  bool
		Err      error
	}{
		{
			Name:     "all healthy",
			Monitors: []Monitor{healthy(), healthy()},
			Healthy:  true,
		},
		{
			Name:     "one unhealthy",
			Monitors: []Monitor{healthy(), &Binary{}, healthy()},
		},
		{
			Name: "one errors",
			Monitors: []Monitor{
				healthy(),
				MonitorFunc(func(ctx context.Context) (bool, error) {
					return false, healthErr
				}),
			},
			Err: healthErr,
		},
		{
			Name:    "no monitors",
			Healthy: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			ok, err := And(testCase.Monitors...).Healthy(context.Background())
			require.ErrorIs(t, err, testCase.Err)
			require.Equal(t, testCase.Healthy, ok)
		})
	}
}

func TestOrMonitor_Healthy(t *testing.T) {
	t.Run("will return healthy", func(t *testing.T) {
		t.Run("if any monitor is healthy", func(t *testing.T) {
			or := Or(&Binary{}, healthy())

			ok, err := or.Healthy(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
		})
	})

	t.Run("will return every error", func(t *testing.T) {
		t.Run("if no monitor is healthy", func(t *testing.T) {
			errA := errors.New("a")
			errB := errors.New("b")
			or := Or(
				MonitorFunc(func(ctx context.Context) (bool, error) { return false, errA }),
				&Binary{},
				MonitorFunc(func(ctx context.Context) (bool, error) { return false, errB }),
			)

			ok, err := or.Healthy(context.Background())
			require.False(t, ok)
			require.ErrorIs(t, err, errA)
			require.ErrorIs(t, err, errB)
		})
	})
}

func TestTimeout(t *testing.T) {
	t.Run("will return unhealthy", func(t *testing.T) {
		t.Run("if the check does not finish in time", func(t *testing.T) {
			slow := MonitorFunc(func(ctx context.Context) (bool, error) {
				<-ctx.Done()
				return true, nil
			})

			ok, err := Timeout(10*time.Millisecond, slow).Healthy(context.Background())
			require.ErrorIs(t, err, context.DeadlineExceeded)
			require.False(t, ok)
		})
	})

	t.Run("will pass through the result", func(t *testing.T) {
		t.Run("if the check finishes in time", func(t *testing.T) {
			ok, err := Timeout(time.Second, healthy()).Healthy(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
		})
	})
}
