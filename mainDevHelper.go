package main

import (
	"net/http"
	"strconv"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// DevHelperGetToken sends a valid JWT token in dev mode
// /api/dev/token
func DevHelperGetToken(w http.ResponseWriter, req *http.Request) {

	sessionID := req.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	caps := map[string]interface{}{
		"interact": true,
		"search":   true,
		"visit":    true,
		"maxView":  [2]float64{360, 180},
		"http":     true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sessionId": sessionID,
		"caps":      caps,
	})
	tokenString, err := token.SignedString([]byte(SecretKey))

	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(tokenString)))

	w.Write([]byte(tokenString))
	log.Debugf("New JWT development token (session: %s): %s", sessionID, tokenString)
}
