package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// NewProvider returns a tracer provider that logs every finished span.
func NewProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewLogProcessor(zap.S().Named("trace"))))
}

// LogProcessor writes finished spans to a zap logger at debug level, or at
// warn when the span ended in error.
type LogProcessor struct {
	log *zap.SugaredLogger
}

func NewLogProcessor(log *zap.SugaredLogger) *LogProcessor {
	return &LogProcessor{log: log}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	kv := []any{
		"span", s.Name(),
		"trace_id", s.SpanContext().TraceID().String(),
		"duration", s.EndTime().Sub(s.StartTime()),
	}
	for _, a := range s.Attributes() {
		kv = append(kv, string(a.Key), attrValue(a))
	}

	if s.Status().Code == codes.Error {
		p.log.Warnw("span failed", append(kv, "err", s.Status().Description)...)
		return
	}
	p.log.Debugw("span", kv...)
}

func (p *LogProcessor) Shutdown(context.Context) error { return nil }

func (p *LogProcessor) ForceFlush(context.Context) error { return nil }

func attrValue(a attribute.KeyValue) any {
	return a.Value.AsInterface()
}
