package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// AcceptedToken is the only credential the gate admits. Login hands it out
// to anyone who supplies an email and password.
const AcceptedToken = "token"

var ErrUnauthorized = errors.New("unauthorized")

// Gate checks the handshake credential before a websocket is upgraded
type Gate struct {
	token []byte
}

func NewGate(token string) *Gate {
	return &Gate{token: []byte(token)}
}

// Admit returns ErrUnauthorized unless r carries the accepted token, either
// as the token query parameter or as a bearer Authorization header.
func (g *Gate) Admit(r *http.Request) error {
	cred := credential(r)
	if cred == "" || subtle.ConstantTimeCompare([]byte(cred), g.token) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func credential(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
