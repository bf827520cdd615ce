package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Capability is the memoized answer to "does this store run multi-statement transactions".
type Capability int32

const (
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

func (c Capability) String() string {
	switch c {
	case CapabilitySupported:
		return "supported"
	case CapabilityUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Prober decides whether db supports multi-statement transactions.
type Prober interface {
	Probe(ctx context.Context, db *gorm.DB) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, db *gorm.DB) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, db *gorm.DB) (bool, error) {
	return f(ctx, db)
}

// Static always reports the same answer without touching the database.
func Static(supported bool) Prober {
	return ProberFunc(func(context.Context, *gorm.DB) (bool, error) {
		return supported, nil
	})
}

// ProberForMode returns the prober for a configured tx mode.
func ProberForMode(mode string) (Prober, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case config.TxModeOn:
		return Static(true), nil
	case config.TxModeOff:
		return Static(false), nil
	case config.TxModeAuto, "":
		return ProberFunc(probeMultiStatement), nil
	default:
		return nil, fmt.Errorf("unknown tx mode %q", mode)
	}
}

// probeMultiStatement opens a real transaction and runs two statements in it.
// Poolers in statement mode (PgBouncer) reject this with a protocol error,
// which is reported as unsupported rather than as a probe failure.
func probeMultiStatement(ctx context.Context, db *gorm.DB) (bool, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		if refusesTransactions(tx.Error) {
			return false, nil
		}
		return false, tx.Error
	}
	defer tx.Rollback()

	var first, second int
	if err := tx.Raw("SELECT 1").Scan(&first).Error; err != nil {
		if refusesTransactions(err) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Raw("SELECT 2").Scan(&second).Error; err != nil {
		if refusesTransactions(err) {
			return false, nil
		}
		return false, err
	}
	return first == 1 && second == 2, nil
}

func refusesTransactions(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "08P01" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transaction blocks not allowed") ||
		strings.Contains(msg, "transactions are not supported")
}
