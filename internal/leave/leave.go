// Package leave holds the employee leave views: request history, balances,
// the team board and the request form. The data is fixed sample data and
// submissions are acknowledged but not stored.
package leave

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidFilter  = errors.New("invalid status filter")
	ErrInvalidKind    = errors.New("invalid leave type")
	ErrMissingDates   = errors.New("start and end dates are required")
	ErrEndBeforeStart = errors.New("end date is before start date")
)

// DateLayout is the wire format of request dates.
const DateLayout = "2006-01-02"

// Status is the approval state of a request.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Request is one leave request.
type Request struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
	Reason    string `json:"reason"`
	Status    Status `json:"status"`
}

// Balance is the allowance for one leave type.
type Balance struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
	Used  int    `json:"used"`
}

// Remaining returns the unused days.
func (b Balance) Remaining() int { return b.Total - b.Used }

// PercentUsed returns Used as a percentage of Total.
func (b Balance) PercentUsed() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Used) / float64(b.Total) * 100
}

// Upcoming is a dashboard entry for a scheduled leave.
type Upcoming struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	From   string `json:"from"`
	To     string `json:"to"`
	Status Status `json:"status"`
}

// TeamMember is one colleague on the availability board.
type TeamMember struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Avatar string `json:"avatar"`
}

// Dashboard is the overview page.
type Dashboard struct {
	Balances []Balance    `json:"balances"`
	Upcoming []Upcoming   `json:"upcoming"`
	Team     []TeamMember `json:"team"`
}

// Filter selects requests by status.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPending  Filter = "pending"
	FilterApproved Filter = "approved"
	FilterRejected Filter = "rejected"
)

// ParseFilter accepts the four filter names in any case. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterApproved, FilterRejected:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Request) bool {
	return f == FilterAll || strings.EqualFold(string(r.Status), string(f))
}

// Kind is the leave type chosen on the form.
type Kind string

const (
	KindAnnual   Kind = "annual"
	KindSick     Kind = "sick"
	KindPersonal Kind = "personal"
	KindOther    Kind = "other"
)

// ParseKind accepts the four kinds. Empty means annual.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAnnual, nil
	case KindAnnual, KindSick, KindPersonal, KindOther:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Form is a submitted leave request. Zero dates mean not chosen.
type Form struct {
	Kind   Kind
	Start  time.Time
	End    time.Time
	Reason string
}

// Receipt acknowledges a submitted form.
type Receipt struct {
	Kind    Kind   `json:"type"`
	Days    int    `json:"days"`
	Message string `json:"message"`
}

// Days counts calendar days from start to end inclusive. A partial day
// counts as a whole one.
func Days(start, end time.Time) int {
	span := end.Sub(start)
	return int(math.Ceil(span.Hours()/24)) + 1
}
