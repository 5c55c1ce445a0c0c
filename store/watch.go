package store

import (
	"sync"

	events "github.com/docker/go-events"
)

// Change is delivered to watchers after every committed operation. State
// is the committed value and must be treated as read-only.
type Change[T any] struct {
	Provider  string
	Operation string
	Version   uint64
	State     T
}

type watcher struct {
	ch    *events.Channel
	queue *events.Queue
	once  sync.Once
	stop  func()
}

func (w *watcher) cancel() {
	w.once.Do(w.stop)
}

// dropClosed hides ErrSinkClosed from the queue. A watcher's channel is
// closed before its queue is removed from the broadcaster, so late writes
// are expected.
type dropClosed struct {
	sink events.Sink
}

func (s dropClosed) Write(event events.Event) error {
	if err := s.sink.Write(event); err != nil && err != events.ErrSinkClosed {
		return err
	}
	return nil
}

func (s dropClosed) Close() error {
	return s.sink.Close()
}

// Watch subscribes to Change[T] values in commit order. Each watcher has
// its own unbounded queue, so a slow reader never blocks operations. The
// returned function unsubscribes and is safe to call more than once. The
// channel is closed after the watcher is cancelled or the provider is
// closed, so ranging over it terminates. Changes still queued at that point
// are dropped.
func (p *Provider[T, A]) Watch() (<-chan events.Event, func()) {
	out := make(chan events.Event)

	ch := events.NewChannel(0)
	q := events.NewQueue(dropClosed{sink: ch})
	w := &watcher{ch: ch, queue: q}
	w.stop = func() {
		ch.Close()
		_ = p.broadcast.Remove(q)
		_ = q.Close()

		p.mu.Lock()
		delete(p.watchers, w)
		p.mu.Unlock()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		ch.Close()
		_ = q.Close()
		close(out)
		return out, func() {}
	}
	p.watchers[w] = struct{}{}
	p.mu.Unlock()

	go forward(ch, out)

	if err := p.broadcast.Add(q); err != nil {
		w.cancel()
	}
	return out, w.cancel
}

// forward relays events from ch to out until ch is closed, then closes out.
func forward(ch *events.Channel, out chan<- events.Event) {
	defer close(out)
	for {
		select {
		case ev := <-ch.C:
			select {
			case out <- ev:
			case <-ch.Done():
				return
			}
		case <-ch.Done():
			return
		}
	}
}
