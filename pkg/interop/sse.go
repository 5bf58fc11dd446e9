package interop

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// SSEOption configures an SSEHandler.
type SSEOption func(*sseConfig)

type sseConfig struct {
	eventName string
	logger    *slog.Logger
}

// WithSSEEventName sets the "event:" field written with each message.
// Unset, messages go out as unnamed events.
func WithSSEEventName(name string) SSEOption {
	return func(c *sseConfig) { c.eventName = name }
}

// WithSSELogger sets the logger for connection lifecycle and write
// errors. Defaults to slog.Default.
func WithSSELogger(logger *slog.Logger) SSEOption {
	return func(c *sseConfig) { c.logger = logger }
}

// SSEHandler streams a signal's elements to HTTP clients as server-sent
// events. Each request observes the signal independently; the response
// ends when the signal terminates or the client disconnects.
type SSEHandler[E any, F error] struct {
	source signal.Signal[E, F]
	encode func(E) []byte
	config sseConfig
}

// NewSSEHandler creates a handler streaming source, encoding each
// element with encode.
func NewSSEHandler[E any, F error](source signal.Signal[E, F], encode func(E) []byte, opts ...SSEOption) *SSEHandler[E, F] {
	config := sseConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&config)
	}
	return &SSEHandler[E, F]{source: source, encode: encode, config: config}
}

func (h *SSEHandler[E, F]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The observer runs on producer goroutines; it only hands encoded
	// payloads over, and every ResponseWriter access stays on this
	// request goroutine so nothing can write after the handler returns.
	frames := make(chan []byte, 16)
	done := make(chan struct{})
	quit := make(chan struct{})
	var doneOnce sync.Once
	finish := func() { doneOnce.Do(func() { close(done) }) }

	// Subscribing on its own goroutine keeps a synchronously emitting
	// source from filling frames before this goroutine starts draining.
	subCh := make(chan signal.Disposable, 1)
	go func() {
		subCh <- ObserveContext(r.Context(), h.source, signal.NewObserver(
			func(e E) {
				select {
				case frames <- h.encode(e):
				case <-quit:
				}
			},
			func(f F) {
				h.config.logger.Warn("event stream failed", "error", error(f), "remote", r.RemoteAddr)
				finish()
			},
			func() {
				finish()
			},
		))
	}()
	defer func() { (<-subCh).Dispose() }()
	defer close(quit)

	write := func(payload []byte) {
		if h.config.eventName != "" {
			fmt.Fprintf(w, "event: %s\n", h.config.eventName)
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	for {
		select {
		case payload := <-frames:
			write(payload)
		case <-done:
			// Flush frames that were queued ahead of the terminal event.
			for {
				select {
				case payload := <-frames:
					write(payload)
				default:
					return
				}
			}
		case <-r.Context().Done():
			return
		}
	}
}

// Mount registers the handler on a chi router at the given pattern as a
// GET route.
func Mount(r chi.Router, pattern string, h http.Handler) {
	r.Get(pattern, h.ServeHTTP)
}
