package main

import (
	"errors"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/mapview"
)

// JSONChangeMessage tags update messages sent to clients
type JSONChangeMessage interface{}

// JSONCommand holds WS messages
type JSONCommand struct {
	Select   *JSONCastle    `json:"select"`
	Deselect *bool          `json:"deselect"`
	TapEmpty *bool          `json:"tapEmpty"`
	Reset    *bool          `json:"reset"`
	Locate   *JSONLocate    `json:"locate"`
	MapType  *string        `json:"mapType"`
	Viewport *camera.Region `json:"viewport"`
}

func (j *JSONCommand) check() error {
	if j.Select != nil && j.Select.ID == nil {
		return errors.New("Invalid castle ID")
	}
	if j.Locate != nil && j.Locate.Pos != nil && !j.Locate.Pos.IsValid() {
		return errors.New("Invalid location")
	}
	if j.MapType != nil {
		if _, ok := mapview.ParseMapType(*j.MapType); !ok {
			return errors.New("Unknown map type")
		}
	}
	if j.Viewport != nil && !j.Viewport.IsValid() {
		return errors.New("Invalid viewport")
	}
	return nil
}

func (j *JSONCommand) clear() {
	j.Select = nil
	j.Deselect = nil
	j.TapEmpty = nil
	j.Reset = nil
	j.Locate = nil
	j.MapType = nil
	j.Viewport = nil
}

// JSONLocate asks to center on a position, or on the client address when empty
type JSONLocate struct {
	Pos *camera.Point `json:"pos,omitempty"`
}

// AddedRemoved is used to provide additional marker change information
type AddedRemoved struct {
	Added   bool `json:"added,omitempty"`
	Updated bool `json:"updated,omitempty"`
	Removed bool `json:"removed,omitempty"`
}

// JSONCastle holds castle messages
type JSONCastle struct {
	ID      *string       `json:"castle_id"`
	Name    string        `json:"name,omitempty"`
	Pos     *camera.Point `json:"pos,omitempty"`
	Visited *bool         `json:"visited,omitempty"`
	Geohash string        `json:"geohash,omitempty"`
}

// JSONMarkerChange is sent through the WS when a marker appears, changes
// or disappears
type JSONMarkerChange struct {
	JSONChangeMessage `json:"JSONChangeMessage,omitempty"`
	JSONCastle
	AddedRemoved
}

type markerChangeKind int

const (
	markerAdded markerChangeKind = iota
	markerUpdated
	markerRemoved
)

func markerChangeMessage(m *mapview.Marker, kind markerChangeKind) JSONChangeMessage {
	message := &JSONMarkerChange{}
	id := m.ID
	message.ID = &id

	if kind == markerRemoved {
		message.Removed = true
		return message
	}

	pos := m.Pos
	visited := m.Visited
	message.Name = m.Name
	message.Pos = &pos
	message.Visited = &visited
	message.Geohash = m.Geohash
	if kind == markerAdded {
		message.Added = true
	} else {
		message.Updated = true
	}
	return message
}

// JSONCameraMove is sent immediately when the camera should move
type JSONCameraMove struct {
	Camera   camera.Region `json:"camera"`
	Animated bool          `json:"animated"`
}

// JSONFocus selects a marker on the client, a null id clears the focus
type JSONFocus struct {
	Focus *string `json:"focus"`
}

// JSONMapType switches the base layer
type JSONMapType struct {
	MapType string `json:"mapType"`
}
