package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	entitiesCreated  metric.Int64Counter
	entitiesDeleted  metric.Int64Counter
	studentsImported metric.Int64Counter
	cardsIssued      metric.Int64Counter
	eventsScheduled  metric.Int64Counter
	messagesSent     metric.Int64Counter
	logins           metric.Int64Counter
	eventsConsumed   metric.Int64Counter
	queryDuration    metric.Float64Histogram
	queryErrors      metric.Int64Counter
}

// New registers instruments on the global meter provider.
func New(serviceName string) (*Metrics, error) {
	return NewWithMeter(otel.Meter(serviceName))
}

func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.entitiesCreated, err = meter.Int64Counter(
		"agency.entities.created",
		metric.WithDescription("Total number of entities created, by entity"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, err
	}

	m.entitiesDeleted, err = meter.Int64Counter(
		"agency.entities.deleted",
		metric.WithDescription("Total number of entities deleted, by entity"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsImported, err = meter.Int64Counter(
		"agency.students.imported",
		metric.WithDescription("Rows processed by the student import, by outcome"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	m.cardsIssued, err = meter.Int64Counter(
		"agency.cards.issued",
		metric.WithDescription("Total number of student cards issued"),
		metric.WithUnit("{card}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsScheduled, err = meter.Int64Counter(
		"agency.events.scheduled",
		metric.WithDescription("Total number of events scheduled"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.messagesSent, err = meter.Int64Counter(
		"agency.messages.sent",
		metric.WithDescription("Total number of messages sent"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"agency.auth.logins",
		metric.WithDescription("Login attempts, by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms .. 5s
	m.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	m.eventsConsumed, err = meter.Int64Counter(
		"agency.activity.events_consumed",
		metric.WithDescription("Domain events read back from the broker, by source and outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("Total number of failed database queries"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordCreated(ctx context.Context, entity string) {
	if m != nil && m.entitiesCreated != nil {
		m.entitiesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
	}
}

func (m *Metrics) RecordDeleted(ctx context.Context, entity string) {
	if m != nil && m.entitiesDeleted != nil {
		m.entitiesDeleted.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
	}
}

func (m *Metrics) RecordImport(ctx context.Context, imported, skipped, failed int) {
	if m == nil || m.studentsImported == nil {
		return
	}
	m.studentsImported.Add(ctx, int64(imported), metric.WithAttributes(attribute.String("outcome", "imported")))
	m.studentsImported.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("outcome", "skipped")))
	m.studentsImported.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", "failed")))
}

func (m *Metrics) RecordCardIssued(ctx context.Context) {
	if m != nil && m.cardsIssued != nil {
		m.cardsIssued.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEventScheduled(ctx context.Context) {
	if m != nil && m.eventsScheduled != nil {
		m.eventsScheduled.Add(ctx, 1)
	}
}

func (m *Metrics) RecordMessageSent(ctx context.Context) {
	if m != nil && m.messagesSent != nil {
		m.messagesSent.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// RecordEventConsumed counts one broker delivery handled by the activity feed.
func (m *Metrics) RecordEventConsumed(ctx context.Context, source string, err error) {
	if m == nil || m.eventsConsumed == nil {
		return
	}
	outcome := "stored"
	if err != nil {
		outcome = "failed"
	}
	m.eventsConsumed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

// RecordQuery is called by repositories after every statement.
func (m *Metrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	if m == nil || m.queryDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", table),
	)
	m.queryDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil && m.queryErrors != nil {
		m.queryErrors.Add(ctx, 1, attrs)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
