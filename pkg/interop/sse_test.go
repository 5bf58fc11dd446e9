package interop_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rivulet-dev/rivulet/pkg/interop"
	"github.com/rivulet-dev/rivulet/pkg/signal"
)

func TestSSEHandlerStreamsSignal(t *testing.T) {
	source := signal.FromSlice[int, error]([]int{1, 2, 3})
	h := interop.NewSSEHandler(source, func(v int) []byte {
		return []byte(strconv.Itoa(v))
	})

	req := httptest.NewRequest("GET", "/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	want := "data: 1\n\ndata: 2\n\ndata: 3\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestSSEHandlerStreamsLargeSynchronousSource(t *testing.T) {
	// More elements than the handler's internal buffering: the source
	// emits them all during subscription, so the request goroutine must
	// be draining concurrently for the response to complete.
	elements := make([]int, 100)
	for i := range elements {
		elements[i] = i
	}
	h := interop.NewSSEHandler(signal.FromSlice[int, error](elements), func(v int) []byte {
		return []byte(strconv.Itoa(v))
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))

	var got []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "data: ") {
			got = append(got, strings.TrimPrefix(line, "data: "))
		}
	}
	if len(got) != len(elements) {
		t.Fatalf("streamed %d events, want %d", len(got), len(elements))
	}
	for i, v := range got {
		if v != strconv.Itoa(i) {
			t.Fatalf("event %d = %q, want %q", i, v, strconv.Itoa(i))
		}
	}
}

func TestSSEHandlerNamedEvents(t *testing.T) {
	source := signal.Just[string, error]("hello")
	h := interop.NewSSEHandler(source, func(v string) []byte { return []byte(v) },
		interop.WithSSEEventName("greeting"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))

	want := "event: greeting\ndata: hello\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestSSEHandlerStopsOnClientDisconnect(t *testing.T) {
	subject := signal.NewSubject[int, error]()
	h := interop.NewSSEHandler(subject.Signal(), func(v int) []byte {
		return []byte(strconv.Itoa(v))
	})

	req := httptest.NewRequest("GET", "/events", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
		close(done)
	}()

	// Let the handler subscribe, then hang up.
	time.Sleep(50 * time.Millisecond)
	subject.SendNext(1)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after client disconnect")
	}
}

func TestMountServesOverChi(t *testing.T) {
	source := signal.FromSlice[string, error]([]string{"a", "b"})
	h := interop.NewSSEHandler(source, func(v string) []byte { return []byte(v) })

	r := chi.NewRouter()
	interop.Mount(r, "/stream", h)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			lines = append(lines, strings.TrimPrefix(line, "data: "))
		}
	}
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Errorf("streamed %v, want [a b]", lines)
	}
}
