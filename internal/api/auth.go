package api

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"stockgame/internal/actions"
)

const maxLoginBody = 1 << 16

// LoginRequest is accepted as JSON or as a urlencoded form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin is a stub: any email and password pair gets the accepted
// token. Nothing is checked against stored accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, actions.Failure(MsgWrongLogin))
		return
	}

	log.Info().Str("email", req.Email).Msg("login")
	writeJSON(w, http.StatusCreated, actions.Success(actions.Payload{Token: AcceptedToken}))
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (LoginRequest, bool) {
	var req LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, false
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
	}
	return req, true
}
