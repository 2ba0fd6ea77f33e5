package coordinator

import (
	"sync"

	"github.com/houvven/pitch/pkg/lifecycle"
)

type event struct {
	previous lifecycle.RunState
	current  lifecycle.RunState
	reason   string
	err      error
}

// eventQueue hands events to the handler in order on its own goroutine, so
// producers holding the coordinator lock never call user code.
type eventQueue struct {
	handler EventHandler

	mu     sync.Mutex
	cond   *sync.Cond
	items  []event
	closed bool
	done   chan struct{}
}

func newEventQueue(handler EventHandler) *eventQueue {
	q := &eventQueue{handler: handler, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)

	if handler == nil {
		close(q.done)
		return q
	}
	go q.run()
	return q
}

// OnStateChange implements lifecycle.EventEmitter.
func (q *eventQueue) OnStateChange(previous, current lifecycle.RunState, reason string) {
	q.push(event{previous: previous, current: current, reason: reason})
}

func (q *eventQueue) reportError(err error) {
	q.push(event{err: err})
}

func (q *eventQueue) push(e event) {
	if q.handler == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, e)
	q.cond.Signal()
}

func (q *eventQueue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		batch := q.items
		q.items = nil
		closed := q.closed
		q.mu.Unlock()

		for _, e := range batch {
			if e.err != nil {
				q.handler.OnError(e.err)
				continue
			}
			q.handler.OnStateChange(e.previous, e.current, e.reason)
		}

		if closed {
			return
		}
	}
}

// close delivers what is queued and stops the goroutine.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.done
}
