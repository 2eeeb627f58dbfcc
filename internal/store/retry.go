package store

import (
	"strings"
	"time"

	"github.com/banshee-data/coverage.planner/internal/timeutil"
)

const (
	busyMaxAttempts = 5
	busyBaseDelay   = 20 * time.Millisecond
)

// isSQLiteBusy reports whether err is a transient lock error.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// retryOnBusy runs fn, retrying with doubling backoff while it fails with a
// busy error. Other errors return immediately.
func retryOnBusy(clock timeutil.Clock, fn func() error) error {
	delay := busyBaseDelay
	var err error
	for attempt := 1; attempt <= busyMaxAttempts; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt < busyMaxAttempts {
			opsf("database busy (attempt %d/%d), retrying in %v", attempt, busyMaxAttempts, delay)
			clock.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
