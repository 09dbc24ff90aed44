package mapview

import (
	"fortmap.io/FortMapServer/camera"
)

// MapType is the renderer's base layer
type MapType string

const (
	MapTypeStandard  MapType = "standard"
	MapTypeSatellite MapType = "satellite"
	MapTypeHybrid    MapType = "hybrid"
)

// ParseMapType validates a wire map type string
func ParseMapType(s string) (MapType, bool) {
	switch MapType(s) {
	case MapTypeStandard, MapTypeSatellite, MapTypeHybrid:
		return MapType(s), true
	}
	return "", false
}

// Renderer is the map surface a session drives. Implementations may batch
// the marker calls, camera and focus calls go out immediately.
type Renderer interface {
	AddMarker(m *Marker)
	UpdateMarker(m *Marker)
	RemoveMarker(m *Marker)
	FocusMarker(m *Marker)
	ClearFocus()
	SetCamera(region camera.Region, animated bool)
	SetMapType(t MapType)
}
