package mapview

import (
	geohash "github.com/TomiHiltunen/geohash-golang"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

// markerGeohashPrecision is the geohash length sent along as a clustering hint
const markerGeohashPrecision = 7

// Marker is the session-side handle of one rendered annotation
type Marker struct {
	ID      string
	Name    string
	Pos     camera.Point
	Visited bool
	Geohash string
}

func newMarker(poi castles.POI) *Marker {
	m := &Marker{ID: poi.ID}
	m.update(poi)
	return m
}

// update applies a castle snapshot and reports whether anything visible changed
func (m *Marker) update(poi castles.POI) bool {
	pos := camera.Point{poi.Lng, poi.Lat}
	if m.Name == poi.Name && m.Pos == pos && m.Visited == poi.Visited {
		return false
	}
	m.Name = poi.Name
	m.Pos = pos
	m.Visited = poi.Visited
	m.Geohash = geohash.EncodeWithPrecision(poi.Lat, poi.Lng, markerGeohashPrecision)
	return true
}
