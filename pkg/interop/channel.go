package interop

import (
	"context"
	"sync"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// FromChan adapts a receive channel into a signal. Elements received
// from the channel are forwarded to the observer; the signal completes
// when the channel is closed.
//
// A channel is a single-consumer construct, so unlike most signals this
// one is not restartable: concurrent or repeated observations compete
// for the channel's elements. Wrap the result in signal.Share to fan it
// out.
func FromChan[E any](ch <-chan E) signal.Signal[E, signal.Never] {
	return signal.New(func(obs signal.Observer[E, signal.Never]) signal.Disposable {
		stop := make(chan struct{})
		go func() {
			for {
				// Checked first so a completed Dispose deterministically
				// stops consumption: the blocking select below picks
				// uniformly among ready cases and could otherwise still
				// drain an element from a shared channel.
				select {
				case <-stop:
					return
				default:
				}
				select {
				case e, ok := <-ch:
					if !ok {
						obs.SendCompleted()
						return
					}
					obs.SendNext(e)
				case <-stop:
					return
				}
			}
		}()
		return signal.NewDisposable(func() { close(stop) })
	})
}

// ToChan observes the signal and exposes its elements as a channel. The
// channel is closed when the signal terminates, either way; a failure is
// reported through the returned error function, which returns the zero
// failure until one arrives.
//
// The channel carries the given buffer. A slow receiver backpressures
// the producer once the buffer fills, so size it for the expected
// burstiness. Dispose the returned disposable to stop early; elements
// stop flowing then, but the channel is only closed by a terminal
// event, so a receiver ranging over it should also watch the disposal
// it requested.
func ToChan[E any, F error](s signal.Signal[E, F], buffer int) (<-chan E, func() F, signal.Disposable) {
	ch := make(chan E, buffer)
	done := make(chan struct{})
	var closeDone func()
	{
		var once sync.Once
		closeDone = func() { once.Do(func() { close(done) }) }
	}
	var failure F
	d := s.Observe(signal.NewObserver(
		func(e E) {
			select {
			case ch <- e:
			case <-done:
			}
		},
		func(f F) {
			failure = f
			closeDone()
			close(ch)
		},
		func() {
			closeDone()
			close(ch)
		},
	))
	stopped := signal.NewDisposable(func() {
		d.Dispose()
		closeDone()
	})
	err := func() F {
		select {
		case <-done:
			return failure
		default:
			var zero F
			return zero
		}
	}
	return ch, err, stopped
}

// ObserveContext observes the signal with the given observer and ties
// the subscription to the context: when the context is cancelled the
// subscription is disposed. The returned disposable reports disposed
// once the underlying subscription is, whether by context, terminal
// event, or an explicit Dispose.
func ObserveContext[E any, F error](ctx context.Context, s signal.Signal[E, F], obs signal.Observer[E, F]) signal.Disposable {
	sub := s.Observe(obs)
	var stopOnce sync.Once
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			sub.Dispose()
		case <-stop:
		}
	}()
	return &ctxSubscription{sub: sub, stop: func() { stopOnce.Do(func() { close(stop) }) }}
}

type ctxSubscription struct {
	sub  signal.Disposable
	stop func()
}

func (c *ctxSubscription) Dispose() {
	c.stop()
	c.sub.Dispose()
}

func (c *ctxSubscription) IsDisposed() bool { return c.sub.IsDisposed() }
