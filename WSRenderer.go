package main

import (
	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/mapview"
)

// wsRenderer drives a remote map client over one websocket. Marker diffs
// ride the batch, camera, focus and map type changes go out immediately.
type wsRenderer struct {
	ws *wsConn
}

func newWSRenderer(ws *wsConn) *wsRenderer {
	return &wsRenderer{ws: ws}
}

func (r *wsRenderer) AddMarker(m *mapview.Marker) {
	r.ws.writeJSON(markerChangeMessage(m, markerAdded))
}

func (r *wsRenderer) UpdateMarker(m *mapview.Marker) {
	r.ws.writeJSON(markerChangeMessage(m, markerUpdated))
}

func (r *wsRenderer) RemoveMarker(m *mapview.Marker) {
	r.ws.writeJSON(markerChangeMessage(m, markerRemoved))
}

func (r *wsRenderer) FocusMarker(m *mapview.Marker) {
	id := m.ID
	r.ws.writeImmediateJSON(JSONFocus{Focus: &id})
}

func (r *wsRenderer) ClearFocus() {
	r.ws.writeImmediateJSON(JSONFocus{})
}

func (r *wsRenderer) SetCamera(region camera.Region, animated bool) {
	r.ws.writeImmediateJSON(JSONCameraMove{Camera: region, Animated: animated})
}

func (r *wsRenderer) SetMapType(t mapview.MapType) {
	r.ws.writeImmediateJSON(JSONMapType{MapType: string(t)})
}
