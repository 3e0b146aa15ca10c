package observability

import (
	"context"
	"testing"
)

func TestNewTracingStartsAndEndsSpans(t *testing.T) {
	tr, err := NewTracing("filecore-test")
	if err != nil {
		t.Fatalf("NewTracing() error = %v", err)
	}
	defer tr.Shutdown(context.Background())

	_, span := tr.Tracer().Start(context.Background(), "filecore.upload")
	if !span.SpanContext().HasTraceID() {
		t.Error("started span has no trace ID")
	}
	span.End()
}

func TestTracingShutdownIsIdempotentSafe(t *testing.T) {
	tr, err := NewTracing("filecore-test")
	if err != nil {
		t.Fatalf("NewTracing() error = %v", err)
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestNoopExporterDropsSpansWithoutError(t *testing.T) {
	var e noopExporter
	if err := e.ExportSpans(context.Background(), nil); err != nil {
		t.Errorf("ExportSpans() error = %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
