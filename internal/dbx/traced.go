package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dmitrijs2005/userdirectory/internal/dbx"

type instruments struct {
	queries  metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) instruments {
	var ins instruments

	ins.queries, _ = meter.Int64Counter("db.query.count",
		metric.WithDescription("Total number of SQL statements executed"),
		metric.WithUnit("{query}"),
	)
	ins.errors, _ = meter.Int64Counter("db.query.errors",
		metric.WithDescription("Total number of failed SQL statements"),
		metric.WithUnit("{error}"),
	)
	ins.duration, _ = meter.Float64Histogram("db.query.duration",
		metric.WithDescription("SQL statement duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	return ins
}

// Traced decorates a DBTX with an OpenTelemetry span and metrics per
// statement, and debug-logs the SQL when a logger is set.
type Traced struct {
	inner  DBTX
	system string
	logger logging.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	ins            instruments
}

// TracedOption configures a Traced.
type TracedOption func(*Traced)

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracedOption {
	return func(t *Traced) { t.tracerProvider = tp }
}

// WithMeterProvider replaces the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) TracedOption {
	return func(t *Traced) { t.meterProvider = mp }
}

// NewTraced wraps inner. system is reported as the db.system attribute
// ("sqlite", "postgresql"). logger may be nil. Spans and metrics go to the
// global providers unless an option names others.
func NewTraced(inner DBTX, system string, logger logging.Logger, opts ...TracedOption) *Traced {
	t := &Traced{
		inner:          inner,
		system:         system,
		logger:         logger,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.tracer = t.tracerProvider.Tracer(instrumentationName)
	t.ins = newInstruments(t.meterProvider.Meter(instrumentationName))
	return t
}

func (t *Traced) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, done := t.observe(ctx, query)
	res, err := t.inner.ExecContext(ctx, query, args...)
	done(err)
	return res, err
}

func (t *Traced) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, done := t.observe(ctx, query)
	rows, err := t.inner.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext errors surface on Scan, so the span only records timing.
func (t *Traced) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	ctx, done := t.observe(ctx, query)
	row := t.inner.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}

func (t *Traced) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	ctx, done := t.observe(ctx, query)
	err := t.inner.SelectContext(ctx, dest, query, args...)
	done(err)
	return err
}

func (t *Traced) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	ctx, done := t.observe(ctx, query)
	err := t.inner.GetContext(ctx, dest, query, args...)
	// sql.ErrNoRows is a lookup result, not a failure.
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
	} else {
		done(err)
	}
	return err
}

func (t *Traced) observe(ctx context.Context, query string) (context.Context, func(error)) {
	op := operation(query)
	start := time.Now()

	ctx, span := t.tracer.Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.operation", op),
			attribute.String("db.statement", query),
		),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		ins := t.ins
		attrs := metric.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.operation", op),
		)

		ins.queries.Add(ctx, 1, attrs)
		ins.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

		if err != nil {
			ins.errors.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if t.logger != nil {
			t.logger.Debug(ctx, "sql", "operation", op, "query", query, "duration", elapsed, "error", err)
		}
	}
}

// operation returns the lower-cased leading SQL keyword.
func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
