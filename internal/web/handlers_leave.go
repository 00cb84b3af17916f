package web

import (
	"net/http"

	"github.com/JonMunkholm/leavetrack/internal/core"
)

func (s *Server) handleLeaveDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LeaveDashboard())
}

// handleLeaveRequests lists requests filtered by ?status=.
func (s *Server) handleLeaveRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.service.LeaveRequests(r.URL.Query().Get("status"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleSubmitLeave(w http.ResponseWriter, r *http.Request) {
	var form core.LeaveForm
	if err := decodeJSON(w, r, &form); err != nil {
		s.respondError(w, r, err)
		return
	}

	receipt, err := s.service.SubmitLeave(r.Context(), form)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg core.ContactMessage
	if err := decodeJSON(w, r, &msg); err != nil {
		s.respondError(w, r, err)
		return
	}

	ack, err := s.service.SendContact(r.Context(), msg)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: ack})
}
