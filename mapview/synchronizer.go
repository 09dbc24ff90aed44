package mapview

import (
	set "github.com/deckarep/golang-set"

	"fortmap.io/FortMapServer/castles"
)

// Synchronizer reconciles a session's markers with repository snapshots.
// It runs on the session loop and needs no locking of its own.
type Synchronizer struct {
	renderer Renderer
	markers  map[string]*Marker
}

// NewSynchronizer creates an empty synchronizer rendering to r
func NewSynchronizer(r Renderer) *Synchronizer {
	return &Synchronizer{
		renderer: r,
		markers:  make(map[string]*Marker),
	}
}

// Resync diffs a snapshot against the live markers and applies only the
// difference. Resyncing an unchanged snapshot touches the renderer zero times.
func (s *Synchronizer) Resync(pois []castles.POI) {
	next := make(map[string]castles.POI, len(pois))
	nextIDs := set.NewThreadUnsafeSet()
	for _, poi := range pois {
		next[poi.ID] = poi
		nextIDs.Add(poi.ID)
	}
	currentIDs := set.NewThreadUnsafeSet()
	for id := range s.markers {
		currentIDs.Add(id)
	}

	currentIDs.Difference(nextIDs).Each(func(i interface{}) bool {
		id := i.(string)
		m := s.markers[id]
		delete(s.markers, id)
		s.renderer.RemoveMarker(m)
		return false
	})
	nextIDs.Difference(currentIDs).Each(func(i interface{}) bool {
		id := i.(string)
		m := newMarker(next[id])
		s.markers[id] = m
		s.renderer.AddMarker(m)
		return false
	})
	nextIDs.Intersect(currentIDs).Each(func(i interface{}) bool {
		id := i.(string)
		m := s.markers[id]
		if m.update(next[id]) {
			s.renderer.UpdateMarker(m)
		}
		return false
	})
	resyncsTotal.Inc()
}

// MarkerByID returns the live marker handle for a castle id, nil if none
func (s *Synchronizer) MarkerByID(id string) *Marker {
	return s.markers[id]
}

// Len returns the number of live markers
func (s *Synchronizer) Len() int {
	return len(s.markers)
}
