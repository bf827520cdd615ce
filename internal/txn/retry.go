package txn

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Backoff returns the pause before the given retry attempt (1-based).
type Backoff func(attempt int) time.Duration

// NoBackoff retries immediately.
func NoBackoff(int) time.Duration { return 0 }

// ConstantBackoff pauses for d before every retry.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// retryableSQLStates are serialization failures, deadlocks, connection
// failures, admin shutdowns, and read-only (demoted primary) transactions.
var retryableSQLStates = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"08000": {},
	"08001": {},
	"08003": {},
	"08004": {},
	"08006": {},
	"57P01": {},
	"57P02": {},
	"57P03": {},
	"25006": {},
}

type transient interface {
	Transient() bool
}

// IsRetryable reports whether err is in the transient allow-list.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var flagged transient
	if errors.As(err, &flagged) {
		return flagged.Transient()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryableSQLStates[pgErr.Code]
		return ok
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// TransientError marks an error as retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Transient() bool { return true }
