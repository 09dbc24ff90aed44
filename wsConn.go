package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WsConn models a ws connection
// It's optimized to either send a JSON array of objects
// or send an immediate JSON object
type wsConn struct {
	sync.Mutex
	conn   *websocket.Conn
	buffer []JSONChangeMessage

	Name    string
	closing bool
}

// NewWSConn creates a new wsConn handler
func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn, Name: "error: uninitialized"}
}

// writeJSON sends a new object in the array, to be sent later
func (ws *wsConn) writeJSON(msg JSONChangeMessage) {
	ws.Lock()
	defer ws.Unlock()

	if ws.closing {
		return
	}

	// if nothing was buffered yet, schedule a flush for later
	if ws.buffer == nil {
		time.AfterFunc(MessageSendInterval, func() {
			ws.Flush()
		})
	}

	// add to buffer
	ws.buffer = append(ws.buffer, msg)
}

// writeImmediateJSON sends a new object immediately (no buffering)
func (ws *wsConn) writeImmediateJSON(msg interface{}) {
	ws.Lock()
	defer ws.Unlock()

	ws.send(msg)
}

// send does the actual write, the caller holds the lock
func (ws *wsConn) send(msg interface{}) {
	if ws.closing || ws.conn == nil {
		return
	}
	if err := ws.conn.WriteJSON(msg); err != nil {
		log.Errorf("%s: error %s", ws.Name, err.Error())
	}
}

// Flush sends the batched messages as one JSON array
func (ws *wsConn) Flush() {
	ws.Lock()
	defer ws.Unlock()

	if ws.buffer == nil {
		return
	}
	log.Debug("WS flush ", ws.Name, ", len=", len(ws.buffer))

	batch := ws.buffer
	ws.buffer = nil
	ws.send(batch)
}

func (ws *wsConn) close() {
	log.Debug("WS closing ", ws.Name)
	ws.Lock()
	defer ws.Unlock()

	ws.closing = true
	ws.buffer = nil
	ws.conn = nil
}
