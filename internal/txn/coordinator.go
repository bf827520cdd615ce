package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"gorm.io/gorm"
)

// Work is a unit of work. tx is nil when the store cannot run transactions;
// implementations must then use their own handle and tolerate partial visibility.
type Work func(ctx context.Context, tx *gorm.DB) error

// Options tunes a single Run.
type Options struct {
	Retries           int
	CommitTimeout     time.Duration
	Isolation         sql.IsolationLevel
	ReadOnly          bool
	SynchronousCommit string
	Backoff           Backoff
}

// Option mutates Options.
type Option func(*Options)

func WithRetries(n int) Option {
	return func(o *Options) { o.Retries = n }
}

func WithCommitTimeout(d time.Duration) Option {
	return func(o *Options) { o.CommitTimeout = d }
}

func WithIsolation(level sql.IsolationLevel) Option {
	return func(o *Options) { o.Isolation = level }
}

func WithReadOnly() Option {
	return func(o *Options) { o.ReadOnly = true }
}

// WithSynchronousCommit sets SET LOCAL synchronous_commit on postgres sessions.
func WithSynchronousCommit(level string) Option {
	return func(o *Options) { o.SynchronousCommit = level }
}

func WithBackoff(b Backoff) Option {
	return func(o *Options) { o.Backoff = b }
}

var synchronousCommitLevels = map[string]struct{}{
	"on":           {},
	"off":          {},
	"local":        {},
	"remote_write": {},
	"remote_apply": {},
}

// Config wires a Coordinator.
type Config struct {
	DB       *gorm.DB
	Prober   Prober
	Logger   *logger.Logger
	Metrics  *metrics.CoreMetrics
	Defaults Options
}

// Coordinator runs units of work inside a transaction when the store supports
// one and sequentially otherwise. It is created once by the composition root.
type Coordinator struct {
	db       *gorm.DB
	prober   Prober
	logg     *logger.Logger
	metrics  *metrics.CoreMetrics
	defaults Options

	capability atomic.Int32
	probeMu    sync.Mutex
}

// NewCoordinator validates dependencies and returns a Coordinator with an unknown capability.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("txn: db required")
	}
	if cfg.Prober == nil {
		return nil, fmt.Errorf("txn: prober required")
	}
	if cfg.Defaults.Retries < 0 {
		return nil, fmt.Errorf("txn: retries must be >= 0")
	}
	if cfg.Defaults.SynchronousCommit != "" {
		if _, ok := synchronousCommitLevels[strings.ToLower(cfg.Defaults.SynchronousCommit)]; !ok {
			return nil, fmt.Errorf("txn: unknown synchronous_commit level %q", cfg.Defaults.SynchronousCommit)
		}
	}
	if cfg.Defaults.Backoff == nil {
		cfg.Defaults.Backoff = NoBackoff
	}
	return &Coordinator{
		db:       cfg.DB,
		prober:   cfg.Prober,
		logg:     cfg.Logger,
		metrics:  cfg.Metrics,
		defaults: cfg.Defaults,
	}, nil
}

// NewFromConfig builds a Coordinator from DB settings.
func NewFromConfig(db *gorm.DB, cfg config.DBConfig, logg *logger.Logger, m *metrics.CoreMetrics) (*Coordinator, error) {
	prober, err := ProberForMode(cfg.TxMode)
	if err != nil {
		return nil, err
	}
	return NewCoordinator(Config{
		DB:      db,
		Prober:  prober,
		Logger:  logg,
		Metrics: m,
		Defaults: Options{
			Retries:           cfg.TxRetries,
			CommitTimeout:     cfg.TxCommitTimeout,
			SynchronousCommit: cfg.SynchronousCommit,
		},
	})
}

// DB returns the non-transactional handle.
func (c *Coordinator) DB() *gorm.DB {
	return c.db
}

// CheckCapability probes on first use and returns the memoized answer afterwards.
// A failed probe is memoized as unsupported.
func (c *Coordinator) CheckCapability(ctx context.Context) Capability {
	if cached := Capability(c.capability.Load()); cached != CapabilityUnknown {
		return cached
	}
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	if cached := Capability(c.capability.Load()); cached != CapabilityUnknown {
		return cached
	}
	return c.probe(ctx)
}

// Reprobe discards the memoized answer and probes again. Call it after the
// underlying connection has been replaced.
func (c *Coordinator) Reprobe(ctx context.Context) Capability {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	c.capability.Store(int32(CapabilityUnknown))
	return c.probe(ctx)
}

func (c *Coordinator) probe(ctx context.Context) Capability {
	supported, err := c.prober.Probe(ctx, c.db)
	result := CapabilityUnsupported
	if err == nil && supported {
		result = CapabilitySupported
	}
	c.capability.Store(int32(result))

	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"capability": result.String(),
			"driver":     c.db.Dialector.Name(),
		})
		if err != nil {
			c.logg.WarnErr(logCtx, "transaction capability probe failed, running without transactions", err)
		} else {
			c.logg.Info(logCtx, "transaction capability detected")
		}
	}
	return result
}

// Run executes work atomically when possible. Without transaction support,
// work runs once with a nil session and its error is returned unchanged.
// With support, retryable failures rerun the whole unit up to Retries times.
func (c *Coordinator) Run(ctx context.Context, work Work, opts ...Option) error {
	if work == nil {
		return errors.New("txn: work required")
	}
	o := c.options(opts)

	if c.CheckCapability(ctx) != CapabilitySupported {
		return work(ctx, nil)
	}

	var err error
	for attempt := 0; attempt <= o.Retries; attempt++ {
		if attempt > 0 {
			c.metrics.IncTxRetry()
			if c.logg != nil {
				c.logg.WarnErr(c.logg.WithField(ctx, "attempt", attempt), "retrying transaction after transient error", err)
			}
			if waitErr := sleep(ctx, o.Backoff(attempt)); waitErr != nil {
				return err
			}
		}
		err = c.runOnce(ctx, work, o)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func (c *Coordinator) runOnce(ctx context.Context, work Work, o Options) (err error) {
	txCtx := ctx
	if o.CommitTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, o.CommitTimeout)
		defer cancel()
	}

	var txOpts *sql.TxOptions
	if o.Isolation != sql.LevelDefault || o.ReadOnly {
		txOpts = &sql.TxOptions{Isolation: o.Isolation, ReadOnly: o.ReadOnly}
	}
	tx := c.db.WithContext(txCtx).Begin(txOpts)
	if tx.Error != nil {
		return tx.Error
	}

	done := false
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if !done {
			tx.Rollback()
		}
	}()

	if o.SynchronousCommit != "" && c.db.Dialector.Name() == config.DriverPostgres {
		level := strings.ToLower(o.SynchronousCommit)
		if err := tx.Exec("SET LOCAL synchronous_commit = " + level).Error; err != nil {
			return err
		}
	}

	if err := work(txCtx, tx); err != nil {
		return err
	}
	done = true
	return tx.Commit().Error
}

func (c *Coordinator) options(opts []Option) Options {
	o := c.defaults
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Backoff == nil {
		o.Backoff = NoBackoff
	}
	if _, ok := synchronousCommitLevels[strings.ToLower(o.SynchronousCommit)]; !ok {
		o.SynchronousCommit = ""
	}
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunValue runs work and returns the value it produced.
func RunValue[T any](ctx context.Context, c *Coordinator, work func(ctx context.Context, tx *gorm.DB) (T, error), opts ...Option) (T, error) {
	var result T
	err := c.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
		value, err := work(ctx, tx)
		if err != nil {
			return err
		}
		result = value
		return nil
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Operation is one step of a sequence.
type Operation func(ctx context.Context, tx *gorm.DB) (any, error)

// RunSequence runs every operation in order inside one unit and returns their
// results in the same order. A retry reruns the whole sequence.
func (c *Coordinator) RunSequence(ctx context.Context, ops []Operation, opts ...Option) ([]any, error) {
	return RunValue(ctx, c, func(ctx context.Context, tx *gorm.DB) ([]any, error) {
		results := make([]any, 0, len(ops))
		for i, op := range ops {
			value, err := op(ctx, tx)
			if err != nil {
				return nil, fmt.Errorf("operation %d: %w", i, err)
			}
			results = append(results, value)
		}
		return results, nil
	}, opts...)
}
