package mapview

import (
	"sync"
)

// sessionQueueSize bounds how many pending events one session may pile up
const sessionQueueSize = 64

// loop is a session's serialized executor: one goroutine draining one
// task queue. Everything the controller and synchronizer touch runs here.
type loop struct {
	tasks    chan func()
	quit     chan struct{}
	stopOnce sync.Once
}

func newLoop() *loop {
	return &loop{
		tasks: make(chan func(), sessionQueueSize),
		quit:  make(chan struct{}),
	}
}

func (l *loop) run() {
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// post never blocks: a flooding session loses events rather than stalling
// the goroutine feeding it. Reports whether the task was accepted.
func (l *loop) post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	default:
		eventsDropped.Inc()
		log.Warn("session queue full, event dropped")
		return false
	}
}

func (l *loop) stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}
