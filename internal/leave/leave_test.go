package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Pending", FilterPending, false},
		{"APPROVED", FilterApproved, false},
		{" rejected ", FilterRejected, false},
		{"cancelled", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidFilter, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestService_List(t *testing.T) {
	s := NewService()

	ids := func(rs []Request) []int {
		out := make([]int, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	require.Equal(t, []int{1, 2, 3, 4}, ids(s.List(FilterAll)))
	require.Equal(t, []int{2, 4}, ids(s.List(FilterPending)))
	require.Equal(t, []int{1}, ids(s.List(FilterApproved)))
	require.Equal(t, []int{3}, ids(s.List(FilterRejected)))
}

func TestService_Dashboard(t *testing.T) {
	d := NewService().Dashboard()

	require.Len(t, d.Balances, 3)
	annual := d.Balances[0]
	require.Equal(t, "Annual Leave", annual.Type)
	require.Equal(t, 12, annual.Remaining())
	require.InDelta(t, 40.0, annual.PercentUsed(), 0.001)

	require.Len(t, d.Upcoming, 2)
	require.Equal(t, StatusApproved, d.Upcoming[0].Status)

	require.Len(t, d.Team, 3)
	require.Equal(t, "On Leave", d.Team[0].Status)

	// The dashboard is a copy.
	d.Balances[0].Used = 99
	require.Equal(t, 8, NewService().Dashboard().Balances[0].Used)
}

func TestBalance_PercentUsedZeroTotal(t *testing.T) {
	require.Zero(t, Balance{}.PercentUsed())
}

func TestService_Submit(t *testing.T) {
	s := NewService()

	tests := []struct {
		name     string
		form     Form
		wantDays int
		wantErr  error
	}{
		{"single day", Form{Start: date(t, "2024-03-04"), End: date(t, "2024-03-04")}, 1, nil},
		{"four days", Form{Kind: KindSick, Start: date(t, "2023-10-15"), End: date(t, "2023-10-18")}, 4, nil},
		{"year end", Form{Start: date(t, "2023-12-20"), End: date(t, "2023-12-31")}, 12, nil},
		{"partial day rounds up", Form{Start: date(t, "2024-03-04"), End: date(t, "2024-03-05").Add(time.Hour)}, 3, nil},
		{"missing start", Form{End: date(t, "2024-03-04")}, 0, ErrMissingDates},
		{"missing end", Form{Start: date(t, "2024-03-04")}, 0, ErrMissingDates},
		{"end before start", Form{Start: date(t, "2024-03-05"), End: date(t, "2024-03-04")}, 0, ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Submit(tt.form)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantDays, got.Days)
		})
	}
}

func TestService_SubmitMessageAndDefaultKind(t *testing.T) {
	got, err := NewService().Submit(Form{Start: date(t, "2023-10-15"), End: date(t, "2023-10-18")})
	require.NoError(t, err)
	require.Equal(t, KindAnnual, got.Kind)
	require.Equal(t, "Leave request submitted for 4 days", got.Message)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	require.Equal(t, KindAnnual, k)

	k, err = ParseKind("Personal")
	require.NoError(t, err)
	require.Equal(t, KindPersonal, k)

	_, err = ParseKind("sabbatical")
	require.ErrorIs(t, err, ErrInvalidKind)
}
