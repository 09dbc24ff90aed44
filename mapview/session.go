package mapview

import (
	"sync"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

// Session ties one renderer connection to the repository: a serialized
// loop running a controller and a marker synchronizer, plus a repository
// subscription that keeps the markers in step with visited toggles.
type Session struct {
	Controller *Controller
	Markers    *Synchronizer

	repo        *castles.Repository
	loop        *loop
	unsubscribe func()

	mu           sync.Mutex
	resyncQueued bool
}

// NewSession starts the session loop and populates the renderer with the
// current dataset
func NewSession(repo *castles.Repository, renderer Renderer, overview camera.Region) *Session {
	s := &Session{
		repo: repo,
		loop: newLoop(),
	}
	s.Markers = NewSynchronizer(renderer)
	s.Controller = NewController(repo, s.Markers, renderer, overview, s.loop.post)

	go s.loop.run()

	s.unsubscribe = repo.Subscribe(func(castles.Change) { s.queueResync() })
	s.queueResync()
	sessionsActive.Inc()
	return s
}

// queueResync coalesces bursts of repository changes into one resync task
func (s *Session) queueResync() {
	s.mu.Lock()
	if s.resyncQueued {
		s.mu.Unlock()
		return
	}
	s.resyncQueued = true
	s.mu.Unlock()

	posted := s.loop.post(func() {
		s.mu.Lock()
		s.resyncQueued = false
		s.mu.Unlock()
		s.Markers.Resync(s.repo.All())
	})
	if !posted {
		s.mu.Lock()
		s.resyncQueued = false
		s.mu.Unlock()
	}
}

// Close detaches from the repository and stops the loop
func (s *Session) Close() {
	s.unsubscribe()
	s.loop.stop()
	sessionsActive.Dec()
}
