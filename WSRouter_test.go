package main

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/websocket"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

var (
	wsTestOnce   sync.Once
	wsTestRouter *WSRouter
)

// one router for the whole test binary, NewWSRouter publishes an expvar
func wsTestHandler() http.HandlerFunc {
	wsTestOnce.Do(func() {
		SecretKey = "ws-test-secret"
		repo := castles.NewRepository(newNullStore())
		repo.LoadDefault()
		wsTestRouter = NewWSRouter(repo, camera.PortugalOverview, nil)
	})
	return wsTestRouter.handle(upgrader)
}

func mintToken(t *testing.T, caps JWTTokenCaps) string {
	t.Helper()
	claims := &JWTToken{SessionID: "test-session", Capabilities: caps}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SecretKey))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// a rejected socket is closed by the server, the next read must fail
// before the deadline instead of sitting on an open connection
func expectServerClose(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the server to close the connection")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Error("server left the rejected connection open")
	}
}

func TestWSRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(wsTestHandler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=not-a-token"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var reply struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Error == "" {
		t.Error("expected an error reply before the close")
	}
	expectServerClose(t, conn)
}

func TestWSRejectsTokenWithoutInteract(t *testing.T) {
	srv := httptest.NewServer(wsTestHandler())
	defer srv.Close()

	header := http.Header{}
	header.Set("X-FORTMAP-TOKEN", mintToken(t, JWTTokenCaps{Search: true, Visit: true}))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var reply struct {
		Error string `json:"error"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Error == "" {
		t.Error("expected an error reply before the close")
	}
	expectServerClose(t, conn)
}
