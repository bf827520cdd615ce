package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox/payloads"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox/registry"
)

const (
	publishTimeout = 15 * time.Second
	maxIdleBackoff = 10 * time.Second
	jitterWindow   = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// publishFunc sends one message and blocks until the server acknowledges it.
type publishFunc func(context.Context, *gcppubsub.Message) (string, error)

// publisherFactory returns the sender for a topic, or nil when the topic has none.
type publisherFactory func(topic string) publishFunc

// RelayParams wires a Relay.
type RelayParams struct {
	Outbox     config.OutboxConfig
	Logger     *logger.Logger
	Metrics    *metrics.CoreMetrics
	DB         dbClient
	PubSub     pubSubClient
	Repository outboxRepository
	Registry   registryResolver
	Publishers publisherFactory
}

// Relay drains outbox rows written by checkout, voids, stock writes and
// payment confirmations onto Pub/Sub. A row is published at least once;
// consumers dedupe on the event_id attribute.
type Relay struct {
	logg        *logger.Logger
	metrics     *metrics.CoreMetrics
	db          dbClient
	pubsub      pubSubClient
	repo        outboxRepository
	registry    registryResolver
	publishers  publisherFactory
	batchSize   int
	maxAttempts int
	interval    time.Duration
}

// NewRelay validates params and applies outbox defaults.
func NewRelay(params RelayParams) (*Relay, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	publishers := params.Publishers
	if publishers == nil {
		publishers = gcpPublishers(params.PubSub)
	}

	cfg := params.Outbox
	return &Relay{
		logg:        params.Logger,
		metrics:     params.Metrics,
		db:          params.DB,
		pubsub:      params.PubSub,
		repo:        params.Repository,
		registry:    params.Registry,
		publishers:  publishers,
		batchSize:   orDefault(cfg.BatchSize, 50),
		maxAttempts: orDefault(cfg.MaxAttempts, 10),
		interval:    time.Duration(orDefault(cfg.PollIntervalMS, 500)) * time.Millisecond,
	}, nil
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one; failed batches back off exponentially up to maxIdleBackoff.
func (r *Relay) Run(ctx context.Context) error {
	for _, dep := range []struct {
		name string
		ping func(context.Context) error
	}{{"database", r.db.Ping}, {"pubsub", r.pubsub.Ping}} {
		if err := dep.ping(ctx); err != nil {
			r.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	wait := r.interval
	for {
		if err := ctx.Err(); err != nil {
			r.logg.Info(ctx, "outbox relay stopping")
			return err
		}

		claimed, err := r.drain(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox relay batch failed", err)
			wait = min(wait*2, maxIdleBackoff)
		case claimed >= r.batchSize:
			wait = r.interval
			continue
		default:
			wait = r.interval
		}

		if err := pause(ctx, wait+rand.N(jitterWindow)); err != nil {
			return err
		}
	}
}

// delivery is what became of one row.
type delivery string

const (
	delivered delivery = metrics.RelayPublished
	deferred  delivery = metrics.RelayRetried
	abandoned delivery = metrics.RelayAbandoned
)

// drain claims one batch and relays every row in it. Row state changes commit
// together with the claim.
func (r *Relay) drain(ctx context.Context) (int, error) {
	var (
		claimed int
		tally   = map[delivery]int{}
	)
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.repo.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}
		claimed = len(events)
		for _, event := range events {
			outcome, err := r.relay(ctx, tx, event)
			if err != nil {
				return err
			}
			tally[outcome]++
			r.metrics.IncOutboxRelay(string(event.EventType), string(outcome))
		}
		return nil
	})
	if err == nil && claimed > 0 {
		r.logg.Info(r.logg.WithFields(ctx, map[string]any{
			"claimed":   claimed,
			"published": tally[delivered],
			"retried":   tally[deferred],
			"abandoned": tally[abandoned],
		}), "outbox batch relayed")
	}
	return claimed, err
}

// relay publishes one row and records the outcome on it. The returned error
// is reserved for bookkeeping failures, which abort the batch.
func (r *Relay) relay(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (delivery, error) {
	resolved, err := r.registry.Resolve(event)
	if err != nil {
		return abandoned, r.abandon(ctx, tx, event, logFields(event, nil), err)
	}

	fields := logFields(event, resolved)
	err = r.publish(ctx, event, resolved)
	var nonRetryable registry.NonRetryableError
	switch {
	case err == nil:
		if err := r.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return "", fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		r.metrics.ObserveOutboxLag(time.Since(event.CreatedAt))
		return delivered, nil
	case errors.As(err, &nonRetryable):
		return abandoned, r.abandon(ctx, tx, event, fields, err)
	case event.AttemptCount+1 >= r.maxAttempts:
		return abandoned, r.abandon(ctx, tx, event, fields, fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, err))
	}

	fields["attempt_count"] = event.AttemptCount + 1
	r.logg.WarnErr(r.logg.WithFields(ctx, fields), "outbox publish failed, will retry", err)
	if err := r.repo.MarkFailedTx(tx, event.ID, err); err != nil {
		return "", fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return deferred, nil
}

// abandon pins the row at the attempt cap so it is never claimed again. It
// stays in outbox_events with its last error for manual replay.
func (r *Relay) abandon(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, fields map[string]any, cause error) error {
	r.logg.WarnErr(r.logg.WithFields(ctx, fields), "outbox event abandoned", cause)
	if err := r.repo.MarkTerminalTx(tx, event.ID, cause, r.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	send := r.publishers(topic)
	if send == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err := send(ctx, &gcppubsub.Message{Data: event.Payload, Attributes: attributes(event, resolved)})
	return err
}

// attributes carries the keys subscribers filter on: shop, product and the
// stock figures for product events.
func attributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"occurred_at":    resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	set := func(key, value string) {
		if value != "" {
			attrs[key] = value
		}
	}
	setID := func(key string, id uuid.UUID) {
		if id != uuid.Nil {
			attrs[key] = id.String()
		}
	}

	switch p := resolved.Payload.(type) {
	case *payloads.OrderCreatedEvent:
		setID("shop_id", p.ShopID)
		attrs["order_number"] = strconv.FormatInt(p.OrderNumber, 10)
		set("payment_status", string(p.PaymentStatus))
		if p.WarningCount > 0 {
			attrs["has_warnings"] = "true"
		}
	case *payloads.OrderVoidedEvent:
		setID("shop_id", p.ShopID)
		attrs["order_number"] = strconv.FormatInt(p.OrderNumber, 10)
	case *payloads.StockAdjustedEvent:
		setID("shop_id", p.ShopID)
		setID("product_id", p.ProductID)
		set("reason", string(p.Reason))
		attrs["stock_after"] = strconv.Itoa(p.StockAfter)
		if p.Delta != p.RequestedDelta {
			attrs["clamped"] = "true"
		}
	case *payloads.LowStockEvent:
		setID("shop_id", p.ShopID)
		setID("product_id", p.ProductID)
		attrs["stock"] = strconv.Itoa(p.Stock)
		attrs["threshold"] = strconv.Itoa(p.Threshold)
	case *payloads.PaymentConfirmedEvent:
		setID("shop_id", p.ShopID)
		setID("order_id", p.OrderID)
		set("payment_method", string(p.Method))
	}
	return attrs
}

func logFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
	}
	if resolved != nil {
		fields["event_id"] = resolved.Envelope.EventID
		fields["topic"] = resolved.Descriptor.Topic
	}
	return fields
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func gcpPublishers(client pubSubClient) publisherFactory {
	return func(topic string) publishFunc {
		p := client.Publisher(topic)
		if p == nil {
			return nil
		}
		return func(ctx context.Context, msg *gcppubsub.Message) (string, error) {
			return p.Publish(ctx, msg).Get(ctx)
		}
	}
}
