package mapview

import (
	"strings"
	"testing"
	"time"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

// signalRenderer forwards marker calls to channels, for tests that watch
// the session loop from the outside
type signalRenderer struct {
	adds    chan string
	updates chan string
}

func newSignalRenderer() *signalRenderer {
	return &signalRenderer{
		adds:    make(chan string, 16),
		updates: make(chan string, 16),
	}
}

func (r *signalRenderer) AddMarker(m *Marker)           { r.adds <- m.ID }
func (r *signalRenderer) UpdateMarker(m *Marker)        { r.updates <- m.ID }
func (r *signalRenderer) RemoveMarker(m *Marker)        {}
func (r *signalRenderer) FocusMarker(m *Marker)         {}
func (r *signalRenderer) ClearFocus()                   {}
func (r *signalRenderer) SetCamera(camera.Region, bool) {}
func (r *signalRenderer) SetMapType(MapType)            {}

func waitID(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the renderer")
		return ""
	}
}

func newSessionFixture(t *testing.T) (*Session, *signalRenderer, *castles.Repository) {
	t.Helper()
	repo := castles.NewRepository(stubStore{})
	if n := repo.LoadCSV(strings.NewReader(controllerDataset)); n != 3 {
		t.Fatalf("fixture should load 3 castles, got %d", n)
	}
	r := newSignalRenderer()
	return NewSession(repo, r, camera.PortugalOverview), r, repo
}

func TestSessionPopulatesAndFollowsToggles(t *testing.T) {
	s, r, repo := newSessionFixture(t)
	defer s.Close()

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[waitID(t, r.adds)] = true
	}
	if len(seen) != 3 {
		t.Errorf("the initial sync should add every castle once, got %v", seen)
	}

	alpha := castleNamed(t, repo, "Fort Alpha")
	if _, err := repo.ToggleVisited(alpha.ID); err != nil {
		t.Fatal(err)
	}
	if id := waitID(t, r.updates); id != alpha.ID {
		t.Errorf("the toggled castle should update, got %s", id)
	}
}

func TestSessionCloseDetaches(t *testing.T) {
	s, r, repo := newSessionFixture(t)
	for i := 0; i < 3; i++ {
		waitID(t, r.adds)
	}
	s.Close()

	alpha := castleNamed(t, repo, "Fort Alpha")
	if _, err := repo.ToggleVisited(alpha.ID); err != nil {
		t.Fatal(err)
	}
	select {
	case <-r.updates:
		t.Error("a closed session must not resync")
	default:
	}
}

func TestSessionControllerRunsOnLoop(t *testing.T) {
	s, r, repo := newSessionFixture(t)
	defer s.Close()
	for i := 0; i < 3; i++ {
		waitID(t, r.adds)
	}

	// toggling after a select proves the loop serializes both paths
	alpha := castleNamed(t, repo, "Fort Alpha")
	s.Controller.Select(alpha.ID)
	if _, err := repo.ToggleVisited(alpha.ID); err != nil {
		t.Fatal(err)
	}
	if id := waitID(t, r.updates); id != alpha.ID {
		t.Errorf("the toggled castle should update, got %s", id)
	}
}
