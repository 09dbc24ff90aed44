package main

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
	"fortmap.io/FortMapServer/mapview"
)

var (
	// MessageSendInterval determines how often we'll send batches of marker updates
	MessageSendInterval = 1000 * time.Millisecond

	activeConnections *expvar.Int
)

var (
	// ErrInvalidMessage is returned if the json message can't be parsed
	ErrInvalidMessage = errors.New("Invalid message format")
)

// WSRouter holds what a WS handler needs to work
type WSRouter struct {
	repo     *castles.Repository
	overview camera.Region
	locator  *geoIPResolver
}

// NewWSRouter returns a new WSRouter
func NewWSRouter(repo *castles.Repository, overview camera.Region, locator *geoIPResolver) *WSRouter {
	newwsh := WSRouter{repo: repo, overview: overview, locator: locator}
	activeConnections = expvar.NewInt("active_connections")

	return &newwsh
}

func (wsh *WSRouter) handle(upgrader websocket.Upgrader) func(http.ResponseWriter, *http.Request) {

	// handle a new websocket Connection
	// if the token is sent and is valid, we'll proceed
	// this function runs in its own goroutine. If it ever ends, the connection is dropped
	return func(res http.ResponseWriter, req *http.Request) {
		activeConnections.Add(1)
		defer func() {
			activeConnections.Add(-1)
		}()

		conn, err := upgrader.Upgrade(res, req, nil)
		if err != nil {
			log.Warn("upgrade error: ", err)
			return
		}

		t := req.Header.Get("X-FORTMAP-TOKEN")
		if t == "" {
			t = req.URL.Query().Get("token")
		}

		token, err := parseJWTToken(t)
		if err != nil {
			message := struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}{"Can't parse token, or token invalid", err.Error()}
			conn.WriteJSON(message)
			conn.Close()
			log.Warn("Can't parse token, or token invalid: ", err.Error())
			return
		}

		capabilities := token.Capabilities
		if !capabilities.Interact {
			conn.WriteJSON(struct {
				Error string `json:"error"`
			}{"Your token doesn't allow map sessions"})
			conn.Close()
			log.Warn("WS route: token without interact capability")
			return
		}

		identity := "session:" + token.SessionID
		log.Debug("login: ", identity)

		wsConn := newWSConn(conn)
		wsConn.Name = identity

		session := mapview.NewSession(wsh.repo, newWSRenderer(wsConn), wsh.overview)

		defer func() {
			if err := recover(); err != nil {
				log.Error(err)
			}
			log.Debug("logout: ", identity)
			session.Close()
			wsConn.close()
		}()

		// we'll use a single JSONCommand for this socket to limit allocations
		// command.clear() must be called before parsing a new command
		command := JSONCommand{}

		for {
			_, jsonString, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return
				}
				if websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
					wsConn.writeImmediateJSON(struct {
						Error   string `json:"error"`
						Message string `json:"message"`
					}{"Message too large", "Your message size exceeds the session limits"})
					log.Warn(identity, ": Message too large")
					return
				}
				log.Warn(identity, ": ", err.Error())
				return
			}

			command.clear()
			if err := json.Unmarshal(jsonString, &command); err != nil {
				wsConn.writeImmediateJSON(struct {
					Error   string `json:"error"`
					Message string `json:"message"`
				}{"Can't parse command (" + string(jsonString) + ")", err.Error()})
				log.Warn(identity, ": invalid JSON command")
				continue
			}

			if err := command.check(); err != nil {
				wsConn.writeImmediateJSON(struct {
					Error   string `json:"error"`
					Message string `json:"message"`
				}{"Invalid Command (" + string(jsonString) + ")", err.Error()})
				log.Warn(identity, ": invalid command")
				continue
			}

			log.Debug(identity, ": ", string(jsonString))
			commandsTotal.Inc()

			wsh.handleCommand(session, wsConn, &command, capabilities, identity, req)
		}
	}
}
