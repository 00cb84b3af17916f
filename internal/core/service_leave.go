package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/leave"
	"github.com/JonMunkholm/leavetrack/internal/logging"
)

// MsgContactSent acknowledges a contact form.
const MsgContactSent = "Your message has been sent. We'll get back to you soon!"

// LeaveForm is the submitted leave request with dates as YYYY-MM-DD.
type LeaveForm struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// ContactMessage is the contact page form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// LeaveDashboard returns balances, upcoming leaves and the team board.
func (s *Service) LeaveDashboard() leave.Dashboard {
	return s.leave.Dashboard()
}

// LeaveRequests returns requests matching the status filter.
func (s *Service) LeaveRequests(filter string) ([]leave.Request, error) {
	f, err := leave.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.leave.List(f), nil
}

// SubmitLeave validates the form and returns the acknowledgement.
func (s *Service) SubmitLeave(ctx context.Context, form LeaveForm) (leave.Receipt, error) {
	kind, err := leave.ParseKind(form.Type)
	if err != nil {
		return leave.Receipt{}, err
	}
	start, err := parseFormDate(form.StartDate)
	if err != nil {
		return leave.Receipt{}, err
	}
	end, err := parseFormDate(form.EndDate)
	if err != nil {
		return leave.Receipt{}, err
	}

	receipt, err := s.leave.Submit(leave.Form{Kind: kind, Start: start, End: end, Reason: form.Reason})
	if err != nil {
		return leave.Receipt{}, err
	}

	logging.FromContext(ctx).Info("leave request submitted", "type", receipt.Kind, "days", receipt.Days)
	return receipt, nil
}

// SendContact acknowledges a contact message. Nothing is delivered.
func (s *Service) SendContact(ctx context.Context, msg ContactMessage) (string, error) {
	if strings.TrimSpace(msg.Name) == "" || strings.TrimSpace(msg.Email) == "" || strings.TrimSpace(msg.Message) == "" {
		return "", ErrMissingFields
	}
	logging.FromContext(ctx).Info("contact message received",
		append([]any{"email", msg.Email, "length", len(msg.Message)}, RequestMetaFrom(ctx).logArgs()...)...)
	return MsgContactSent, nil
}

// parseFormDate returns the zero time for an empty value.
func parseFormDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(leave.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
