package leave

import (
	"fmt"
	"slices"
)

// Service serves the leave views from fixed sample data.
type Service struct {
	requests []Request
	balances []Balance
	upcoming []Upcoming
	team     []TeamMember
}

// NewService returns a Service loaded with the sample data.
func NewService() *Service {
	return &Service{
		requests: []Request{
			{ID: 1, Type: "Annual Leave", StartDate: "2023-10-15", EndDate: "2023-10-18", Days: 4, Reason: "Family vacation", Status: StatusApproved},
			{ID: 2, Type: "Sick Leave", StartDate: "2023-11-10", EndDate: "2023-11-10", Days: 1, Reason: "Doctor appointment", Status: StatusPending},
			{ID: 3, Type: "Personal Leave", StartDate: "2023-11-24", EndDate: "2023-11-24", Days: 1, Reason: "Personal matters", Status: StatusRejected},
			{ID: 4, Type: "Annual Leave", StartDate: "2023-12-20", EndDate: "2023-12-31", Days: 12, Reason: "Year-end holidays", Status: StatusPending},
		},
		balances: []Balance{
			{Type: "Annual Leave", Total: 20, Used: 8},
			{Type: "Sick Leave", Total: 10, Used: 3},
			{Type: "Personal Leave", Total: 5, Used: 1},
		},
		upcoming: []Upcoming{
			{ID: 1, Type: "Annual Leave", From: "2023-10-15", To: "2023-10-18", Status: StatusApproved},
			{ID: 2, Type: "Sick Leave", From: "2023-11-10", To: "2023-11-10", Status: StatusPending},
		},
		team: []TeamMember{
			{ID: 1, Name: "John Doe", Role: "UX Designer", Status: "On Leave", Avatar: "👨‍💼"},
			{ID: 2, Name: "Jane Smith", Role: "Developer", Status: "Available", Avatar: "👩‍💻"},
			{ID: 3, Name: "Alice Johnson", Role: "Project Manager", Status: "Available", Avatar: "👩‍💼"},
		},
	}
}

// List returns the requests that pass f, in their original order.
func (s *Service) List(f Filter) []Request {
	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Dashboard returns balances, upcoming leaves and the team board.
func (s *Service) Dashboard() Dashboard {
	return Dashboard{
		Balances: slices.Clone(s.balances),
		Upcoming: slices.Clone(s.upcoming),
		Team:     slices.Clone(s.team),
	}
}

// Submit validates f and returns the acknowledgement. Nothing is stored.
func (s *Service) Submit(f Form) (Receipt, error) {
	if f.Start.IsZero() || f.End.IsZero() {
		return Receipt{}, ErrMissingDates
	}
	if f.Start.After(f.End) {
		return Receipt{}, ErrEndBeforeStart
	}

	kind := f.Kind
	if kind == "" {
		kind = KindAnnual
	}

	days := Days(f.Start, f.End)
	return Receipt{
		Kind:    kind,
		Days:    days,
		Message: fmt.Sprintf("Leave request submitted for %d days", days),
	}, nil
}
