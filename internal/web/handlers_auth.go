package web

import (
	"net/http"

	"github.com/JonMunkholm/leavetrack/internal/core"
	"github.com/JonMunkholm/leavetrack/internal/session"
)

// authResponse acknowledges a sign-in change.
type authResponse struct {
	Message string        `json:"message"`
	User    *session.User `json:"user,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req core.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, err := sessionFrom(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	u, err := s.service.Signup(r.Context(), sess, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Message: core.MsgSignupSuccess, User: &u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req core.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, err := sessionFrom(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	u, err := s.service.Login(r.Context(), sess, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: core.MsgLoginSuccess, User: &u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Logout(r.Context(), sess); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: core.MsgLogoutSuccess})
}

// handleMe returns the signed-in user or 401.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	u, err := s.service.CurrentUser(r.Context(), sess)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
