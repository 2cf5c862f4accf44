package database

import (
	"strings"
	"time"

	"github.com/alimgiray/reviewdesk/pkg/logger"
)

const maxRetryAttempts = 3

// WithRetry runs op, retrying transient SQLite failures (locked / busy) with
// exponential backoff, capped at 3 attempts. Non-transient errors return
// immediately.
func WithRetry(op func() error) error {
	var err error
	backoff := 100 * time.Millisecond

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if attempt < maxRetryAttempts {
			logger.Warnf("Transient database error (attempt %d/%d), retrying in %s: %v", attempt, maxRetryAttempts, backoff, err)
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return err
}

func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") || strings.Contains(msg, "busy")
}
