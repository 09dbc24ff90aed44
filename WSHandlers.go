package main

import (
	"net/http"

	"fortmap.io/FortMapServer/mapview"
)

// handleCommand applies one parsed command to the session. The command
// already went through check().
func (wsh *WSRouter) handleCommand(session *mapview.Session, ws *wsConn, command *JSONCommand, caps JWTTokenCaps, identity string, req *http.Request) {

	if command.Select != nil {
		session.Controller.Select(*command.Select.ID)
	}

	if command.Deselect != nil && *command.Deselect {
		session.Controller.Deselect()
	}

	if command.TapEmpty != nil && *command.TapEmpty {
		session.Controller.TapEmptyArea()
	}

	if command.Reset != nil && *command.Reset {
		session.Controller.RequestReset()
	}

	if command.Locate != nil {
		wsh.handleLocate(session, command.Locate, req)
	}

	if command.MapType != nil {
		if t, ok := mapview.ParseMapType(*command.MapType); ok {
			session.Controller.SetMapType(t)
		}
	}

	if command.Viewport != nil {
		viewSize := command.Viewport.Size()
		if viewSize[0] > caps.MaxView[0] || viewSize[1] > caps.MaxView[1] {
			ws.writeImmediateJSON(struct {
				Error string `json:"error"`
			}{"Viewport size error: it can't be larger than what your JWT Token allows"})
			log.Warn(identity, ": Viewport size error")
		} else {
			session.Controller.ViewportChanged(*command.Viewport)
		}
	}
}

// handleLocate centers the camera on the given position, falling back to
// a GeoIP fix on the client address when the command carries none
func (wsh *WSRouter) handleLocate(session *mapview.Session, locate *JSONLocate, req *http.Request) {
	if locate.Pos != nil {
		session.Controller.CenterOn(*locate.Pos)
		return
	}
	if wsh.locator == nil {
		log.Debug("locate without position and no GeoIP database")
		return
	}
	p, err := wsh.locator.locate(remoteAddr(req))
	if err != nil {
		log.Warn("GeoIP lookup failed: ", err)
		return
	}
	session.Controller.CenterOn(p)
}
