package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/userdirectory/internal/dbx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNew_StdoutExportsDatabaseTelemetry(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(ExporterStdout, "userdirectory-test", &buf)
	require.NoError(t, err)

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tr := dbx.NewTraced(db, "sqlite", nil,
		dbx.WithTracerProvider(p.TracerProvider), dbx.WithMeterProvider(p.MeterProvider))
	_, err = tr.ExecContext(context.Background(), `SELECT 1`)
	require.NoError(t, err)

	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "db.select")
	assert.Contains(t, out, "db.query.count")
	assert.Contains(t, out, "userdirectory-test")
}

func TestNew_None(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(ExporterNone, "userdirectory-test", &buf)
	require.NoError(t, err)

	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestNew_UnknownExporter(t *testing.T) {
	_, err := New("zipkin", "userdirectory-test", nil)
	assert.ErrorContains(t, err, "zipkin")
	assert.False(t, Valid("zipkin"))
	assert.True(t, Valid(ExporterStdout))
}

func TestInstall(t *testing.T) {
	orig := otel.GetTracerProvider()
	origMeter := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(orig)
		otel.SetMeterProvider(origMeter)
	})

	p, err := New(ExporterNone, "userdirectory-test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	p.Install()
	assert.Same(t, p.TracerProvider, otel.GetTracerProvider())
	assert.Same(t, p.MeterProvider, otel.GetMeterProvider())
}
