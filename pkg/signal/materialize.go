package signal

import "log/slog"

// Materialize reifies every event of the source, terminal ones included,
// into next events of Event values, then completes. The resulting signal
// can never fail; Dematerialize is its exact inverse.
func Materialize[E any, F error](s Signal[E, F]) Signal[Event[E, F], Never] {
	return New(func(out Observer[Event[E, F], Never]) Disposable {
		return s.Observe(OnEvent(func(ev Event[E, F]) {
			out.SendNext(ev)
			if ev.IsTerminal() {
				out.SendCompleted()
			}
		}))
	})
}

// Dematerialize interprets a stream of reified events back into a live
// stream. Elements after a reified terminal event are unreachable since
// delivery stops at the first terminal.
func Dematerialize[E any, F error](s Signal[Event[E, F], Never]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		return s.Observe(NewObserver[Event[E, F], Never](
			func(ev Event[E, F]) { out.Send(ev) },
			nil,
			out.SendCompleted,
		))
	})
}

// SuppressOption configures SuppressError.
type SuppressOption func(*suppressConfig)

type suppressConfig struct {
	logger *slog.Logger
	name   string
}

// WithSuppressLogger logs each suppressed failure through the given
// logger. Without it, suppression is silent.
func WithSuppressLogger(logger *slog.Logger) SuppressOption {
	return func(c *suppressConfig) {
		c.logger = logger
	}
}

// WithSuppressName names the signal in suppression log records.
func WithSuppressName(name string) SuppressOption {
	return func(c *suppressConfig) {
		c.name = name
	}
}

// SuppressError converts a failable signal into one that cannot fail by
// turning any failure into completion. By default suppression is silent;
// pass WithSuppressLogger to record suppressed failures.
func SuppressError[E any, F error](s Signal[E, F], opts ...SuppressOption) Signal[E, Never] {
	var cfg suppressConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(func(out Observer[E, Never]) Disposable {
		return s.Observe(NewObserver(
			out.SendNext,
			func(failure F) {
				if cfg.logger != nil {
					cfg.logger.Warn("suppressed signal failure",
						"signal", cfg.name,
						"error", error(failure))
				}
				out.SendCompleted()
			},
			out.SendCompleted,
		))
	})
}

// ReplaceError converts a failable signal into one that cannot fail by
// emitting the replacement element in place of a failure, then completing.
func ReplaceError[E any, F error](s Signal[E, F], replacement E) Signal[E, Never] {
	return New(func(out Observer[E, Never]) Disposable {
		return s.Observe(NewObserver(
			out.SendNext,
			func(F) {
				out.SendNext(replacement)
				out.SendCompleted()
			},
			out.SendCompleted,
		))
	})
}

// PromoteError lifts a signal that cannot fail into a failable failure
// type so it can be composed with failable signals. No failure is ever
// produced.
func PromoteError[E any, F error](s Signal[E, Never]) Signal[E, F] {
	return New(func(out Observer[E, F]) Disposable {
		return s.Observe(NewObserver[E, Never](
			out.SendNext,
			nil,
			out.SendCompleted,
		))
	})
}

// ToErrorSignal is PromoteError specialized to the plain error interface,
// the common shape when mixing with external error-producing sources.
func ToErrorSignal[E any](s Signal[E, Never]) Signal[E, error] {
	return PromoteError[E, error](s)
}
