package main

import (
	"errors"
	"fmt"

	jwt "github.com/dgrijalva/jwt-go"
)

var (
	// ErrInvalidCapabilities is returned if the set of capabilities is not coherent
	ErrInvalidCapabilities = errors.New("invalid capabilities")

	// ErrInvalidJWTToken is returned if the token isn't valid
	ErrInvalidJWTToken = errors.New("invalid JWT token")
)

// JWTTokenCaps allows specification of Capabilities for this socket
type JWTTokenCaps struct {
	Interact bool       `json:"interact"`
	Search   bool       `json:"search"`
	Visit    bool       `json:"visit"`
	MaxView  [2]float64 `json:"maxView"`
	HTTP     bool       `json:"http"`
}

func (cap *JWTTokenCaps) check() error {
	if !cap.Interact && !cap.Search && !cap.Visit && !cap.HTTP {
		return ErrInvalidCapabilities
	}
	return nil
}

// JWTToken describes the format of JWT Tokens
type JWTToken struct {
	jwt.StandardClaims

	SessionID string `json:"sessionId"`

	Capabilities JWTTokenCaps `json:"caps"`
}

func parseJWTToken(b64tok string) (*JWTToken, error) {

	var jwttoken JWTToken

	token, err := jwt.ParseWithClaims(b64tok, &jwttoken, func(token *jwt.Token) (interface{}, error) {
		// Don't forget to validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTToken); ok && token.Valid {
		if claims.Capabilities.MaxView[0] == 0 {
			claims.Capabilities.MaxView = [2]float64{360, 180} // default to the whole map
		}
		return claims, nil
	}
	return nil, ErrInvalidJWTToken

}
