package leave_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-dashboard/leave"
)

func TestRemainingAllowance(t *testing.T) {
	tests := []struct {
		name        string
		entitlement string
		taken       string
		want        string
	}{
		{"typical", "25", "12", "13"},
		{"half days", "25", "2.5", "22.5"},
		{"overdrawn is not clamped", "20", "22", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := leave.User{
				AnnualLeaveEntitlement: decimal.RequireFromString(tt.entitlement),
				TakenLeave:             decimal.RequireFromString(tt.taken),
			}
			got := leave.RemainingAllowance(u)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestMonthlyAbsenceHistogram_CountsByStartMonth(t *testing.T) {
	// GIVEN: one approved request spanning March into April, one pending in May
	requests := []leave.LeaveRequest{
		request("r1", "u1", span(t, "2024-03-30", "2024-04-02"), leave.LeaveAnnual, leave.Approved{}),
		request("r2", "u1", span(t, "2024-05-01", "2024-05-01"), leave.LeaveAnnual, leave.Pending{}),
		request("r3", "u3", span(t, "2023-03-01", "2023-03-01"), leave.LeaveSick, leave.Approved{}),
	}

	// WHEN
	hist := leave.MonthlyAbsenceHistogram(requests)

	// THEN: twelve buckets, March has both approved requests regardless of year
	require.Len(t, hist, 12)
	assert.Equal(t, time.January, hist[0].Month)
	assert.Equal(t, "Mar", hist[2].Name())
	assert.Equal(t, 2, hist[2].Requests)
	assert.Equal(t, 0, hist[3].Requests, "April gets nothing from a March start")
	assert.Equal(t, 0, hist[4].Requests, "pending requests are not counted")
}

func TestLeaveTypeDistribution(t *testing.T) {
	requests := []leave.LeaveRequest{
		request("r1", "u1", span(t, "2024-03-01", "2024-03-01"), leave.LeaveSick, leave.Approved{}),
		request("r2", "u1", span(t, "2024-03-02", "2024-03-02"), leave.LeaveAnnual, leave.Approved{}),
		request("r3", "u1", span(t, "2024-03-03", "2024-03-03"), leave.LeaveSick, leave.Approved{}),
		request("r4", "u1", span(t, "2024-03-04", "2024-03-04"), leave.LeaveWFH, leave.Rejected{Reason: "no"}),
	}

	dist := leave.LeaveTypeDistribution(requests)

	assert.Equal(t, []leave.TypeCount{
		{Type: leave.LeaveAnnual, Count: 1},
		{Type: leave.LeaveSick, Count: 2},
	}, dist)
}

func TestBradfordFactor(t *testing.T) {
	sick := func(id leave.RequestID, start string, o leave.Outcome) leave.LeaveRequest {
		return request(id, "u1", span(t, start, start), leave.LeaveSick, o)
	}

	tests := []struct {
		name     string
		requests []leave.LeaveRequest
		want     int
		rating   leave.Rating
	}{
		{"no sickness", nil, 0, leave.RatingHealthy},
		{"one spell", []leave.LeaveRequest{sick("a", "2024-01-01", leave.Approved{})}, 1, leave.RatingHealthy},
		{"three spells", []leave.LeaveRequest{
			sick("a", "2024-01-01", leave.Approved{}),
			sick("b", "2024-02-01", leave.Approved{}),
			sick("c", "2024-03-01", leave.Approved{}),
		}, 27, leave.RatingMonitor},
		{"pending and rejected do not count", []leave.LeaveRequest{
			sick("a", "2024-01-01", leave.Pending{}),
			sick("b", "2024-02-01", leave.Rejected{}),
		}, 0, leave.RatingHealthy},
		{"eight spells", func() []leave.LeaveRequest {
			var rs []leave.LeaveRequest
			for i := 0; i < 8; i++ {
				rs = append(rs, sick(leave.RequestID(fmt.Sprintf("s%d", i)), "2024-01-01", leave.Approved{}))
			}
			return rs
		}(), 512, leave.RatingConcern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := leave.BradfordFactor("u1", tt.requests)
			assert.Equal(t, tt.want, score)
			assert.Equal(t, tt.rating, leave.ClassifyBradford(score))
		})
	}
}

func TestClassifyBradford_Thresholds(t *testing.T) {
	assert.Equal(t, leave.RatingHealthy, leave.ClassifyBradford(20))
	assert.Equal(t, leave.RatingMonitor, leave.ClassifyBradford(21))
	assert.Equal(t, leave.RatingMonitor, leave.ClassifyBradford(50))
	assert.Equal(t, leave.RatingConcern, leave.ClassifyBradford(51))
}

func TestBuildReport_BradfordSortedDescending(t *testing.T) {
	users := engineering()
	s := &leave.Snapshot{
		Users: users,
		Requests: []leave.LeaveRequest{
			request("r1", "u3", span(t, "2024-01-01", "2024-01-01"), leave.LeaveSick, leave.Approved{}),
			request("r2", "u3", span(t, "2024-02-01", "2024-02-01"), leave.LeaveSick, leave.Approved{}),
			request("r3", "u1", span(t, "2024-03-01", "2024-03-01"), leave.LeaveSick, leave.Approved{}),
		},
	}

	report := leave.BuildReport(s)

	require.Len(t, report.Bradford, len(users))
	assert.Equal(t, leave.UserID("u3"), report.Bradford[0].UserID)
	assert.Equal(t, 8, report.Bradford[0].Score)
	assert.Equal(t, leave.UserID("u1"), report.Bradford[1].UserID)
	// zero scores keep user order
	assert.Equal(t, leave.UserID("u2"), report.Bradford[2].UserID)
	assert.Len(t, report.Monthly, 12)
	assert.Equal(t, []leave.TypeCount{{Type: leave.LeaveSick, Count: 3}}, report.Distribution)
}
