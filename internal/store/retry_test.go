package store

import (
	"errors"
	"testing"
	"time"

	"github.com/banshee-data/coverage.planner/internal/timeutil"
)

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"busy code", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"locked message", errors.New("database is locked"), true},
		{"table locked", errors.New("database table is locked"), true},
		{"other error", errors.New("no such table: coverage_plans"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteBusy(tt.err); got != tt.expected {
				t.Errorf("isSQLiteBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		clock := timeutil.NewMockClock(time.Time{})
		callCount := 0
		err := retryOnBusy(clock, func() error {
			callCount++
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if callCount != 1 {
			t.Errorf("expected 1 call, got %d", callCount)
		}
		if len(clock.Sleeps()) != 0 {
			t.Errorf("expected no sleeps, got %v", clock.Sleeps())
		}
	})

	t.Run("success after retry", func(t *testing.T) {
		clock := timeutil.NewMockClock(time.Time{})
		callCount := 0
		err := retryOnBusy(clock, func() error {
			callCount++
			if callCount < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if callCount != 3 {
			t.Errorf("expected 3 calls, got %d", callCount)
		}
		sleeps := clock.Sleeps()
		if len(sleeps) != 2 || sleeps[0] != busyBaseDelay || sleeps[1] != 2*busyBaseDelay {
			t.Errorf("unexpected backoff %v", sleeps)
		}
	})

	t.Run("non-busy error is not retried", func(t *testing.T) {
		clock := timeutil.NewMockClock(time.Time{})
		callCount := 0
		want := errors.New("constraint failed")
		err := retryOnBusy(clock, func() error {
			callCount++
			return want
		})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
		if callCount != 1 {
			t.Errorf("expected 1 call, got %d", callCount)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		clock := timeutil.NewMockClock(time.Time{})
		callCount := 0
		err := retryOnBusy(clock, func() error {
			callCount++
			return errors.New("SQLITE_BUSY")
		})
		if !isSQLiteBusy(err) {
			t.Errorf("expected busy error, got %v", err)
		}
		if callCount != busyMaxAttempts {
			t.Errorf("expected %d calls, got %d", busyMaxAttempts, callCount)
		}
		if got := len(clock.Sleeps()); got != busyMaxAttempts-1 {
			t.Errorf("expected %d sleeps, got %d", busyMaxAttempts-1, got)
		}
	})
}
