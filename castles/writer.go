package castles

// visitedWriter persists visited-name snapshots off the toggling goroutine.
// Only the newest unwritten snapshot matters: a newer list replaces a
// pending one, and a failed write is logged and forgotten.
type visitedWriter struct {
	store    VisitedStore
	pending  chan []string
	flushReq chan chan struct{}
	quit     chan struct{}
}

func newVisitedWriter(store VisitedStore) *visitedWriter {
	w := &visitedWriter{
		store:    store,
		pending:  make(chan []string, 1),
		flushReq: make(chan chan struct{}),
		quit:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *visitedWriter) run() {
	for {
		select {
		case names := <-w.pending:
			w.write(names)
		case done := <-w.flushReq:
			// anything enqueued before the flush request gets written first
			select {
			case names := <-w.pending:
				w.write(names)
			default:
			}
			close(done)
		case <-w.quit:
			return
		}
	}
}

func (w *visitedWriter) write(names []string) {
	if err := w.store.WriteVisited(names); err != nil {
		persistFailures.Inc()
		log.Warn("visited list write failed: ", err)
	}
}

// enqueue never blocks: it replaces any snapshot the worker hasn't picked up yet
func (w *visitedWriter) enqueue(names []string) {
	for {
		select {
		case w.pending <- names:
			return
		default:
			select {
			case <-w.pending:
			default:
			}
		}
	}
}

// flush waits for the worker to write anything pending
func (w *visitedWriter) flush() {
	done := make(chan struct{})
	select {
	case w.flushReq <- done:
		<-done
	case <-w.quit:
	}
}

func (w *visitedWriter) stop() {
	close(w.quit)
}
