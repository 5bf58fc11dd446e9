package middleware

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// Default tracer name for rivulet pipelines.
const defaultTracerName = "rivulet"

// TraceConfig configures the tracing operator.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "rivulet").
	TracerName string

	// Context is the parent context for observation spans. Defaults to
	// context.Background; set it to tie spans into an enclosing trace.
	Context context.Context

	// Attributes are added to every observation span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures the tracing operator.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTraceContext sets the parent context for observation spans.
func WithTraceContext(ctx context.Context) TraceOption {
	return func(c *TraceConfig) {
		c.Context = ctx
	}
}

// WithTraceAttributes adds attributes to every observation span.
func WithTraceAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

// Traced wraps the signal so each observation of the result is covered
// by a span named after the signal. The span opens when the observation
// starts and ends at the terminal event or disposal, carrying the
// element count as an attribute; a failure is recorded on the span and
// sets its status to error.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in main() before building pipelines:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Traced[E any, F error](name string, s signal.Signal[E, F], opts ...TraceOption) signal.Signal[E, F] {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return signal.New(func(obs signal.Observer[E, F]) signal.Disposable {
		_, span := config.tracer.Start(
			config.Context,
			name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(config.Attributes...),
			trace.WithTimestamp(time.Now()),
		)

		var elements atomic.Int64
		var ended atomic.Bool
		end := func(status codes.Code, description string) {
			if !ended.CompareAndSwap(false, true) {
				return
			}
			span.SetAttributes(attribute.Int64("rivulet.elements", elements.Load()))
			span.SetStatus(status, description)
			span.End()
		}

		sub := s.Observe(signal.NewObserver(
			func(e E) {
				elements.Add(1)
				obs.SendNext(e)
			},
			func(f F) {
				span.RecordError(error(f))
				end(codes.Error, error(f).Error())
				obs.SendFailed(f)
			},
			func() {
				end(codes.Ok, "")
				obs.SendCompleted()
			},
		))
		return signal.NewDisposable(func() {
			// Disposal without a terminal event is a normal way for an
			// observation to end; the span closes unset.
			end(codes.Unset, "")
			sub.Dispose()
		})
	})
}
