package signal

import "sync"

// sharedState is the reference-counted ownership record behind Share: the
// first observer starts the upstream production run, the last observer's
// removal tears it down. A fresh run begins if the signal is observed
// again later.
type sharedState[E any, F error] struct {
	mu       sync.Mutex
	source   Signal[E, F]
	capacity int

	count    int
	subject  *Subject[E, F]
	upstream Disposable
}

// Share multicasts a single production run of the source to any number of
// concurrent observers. The upstream subscription starts with the first
// observer and is disposed when the last observer leaves; a subsequent
// observer starts a new run.
func Share[E any, F error](s Signal[E, F]) Signal[E, F] {
	return shareWithCapacity(s, 0)
}

// ShareReplay is Share with a replay buffer: observers joining a live run
// first receive the run's last capacity elements.
func ShareReplay[E any, F error](s Signal[E, F], capacity int) Signal[E, F] {
	return shareWithCapacity(s, capacity)
}

func shareWithCapacity[E any, F error](s Signal[E, F], capacity int) Signal[E, F] {
	st := &sharedState[E, F]{source: s, capacity: capacity}
	return New(st.observe)
}

func (st *sharedState[E, F]) observe(obs Observer[E, F]) Disposable {
	st.mu.Lock()
	if st.count == 0 {
		st.subject = newSubject[E, F](st.capacity)
	}
	st.count++
	first := st.count == 1
	subject := st.subject
	st.mu.Unlock()

	// Register before starting the upstream so a synchronously emitting
	// producer reaches the first observer.
	sub := subject.Observe(obs)

	if first {
		up := st.source.Observe(subject.AsObserver())
		st.mu.Lock()
		if st.count > 0 && st.subject == subject {
			st.upstream = up
			up = nil
		}
		st.mu.Unlock()
		if up != nil {
			up.Dispose()
		}
	}

	return NewDisposable(func() {
		sub.Dispose()
		st.mu.Lock()
		st.count--
		var up Disposable
		if st.count == 0 {
			up = st.upstream
			st.upstream = nil
			st.subject = nil
		}
		st.mu.Unlock()
		if up != nil {
			up.Dispose()
		}
	})
}
