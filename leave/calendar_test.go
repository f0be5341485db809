package leave_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-dashboard/leave"
)

func TestWhoIsOff(t *testing.T) {
	users := engineering()
	requests := []leave.LeaveRequest{
		request("r1", "u2", span(t, "2024-06-10", "2024-06-14"), leave.LeaveAnnual, leave.Approved{}),
		request("r2", "u3", span(t, "2024-06-14", "2024-06-14"), leave.LeaveSick, leave.Approved{}),
		request("r3", "u1", span(t, "2024-06-14", "2024-06-14"), leave.LeaveAnnual, leave.Pending{}),
		request("r4", "ghost", span(t, "2024-06-14", "2024-06-14"), leave.LeaveAnnual, leave.Approved{}),
	}

	off := leave.WhoIsOff(day(t, "2024-06-14"), requests, users)

	require.Len(t, off, 2)
	assert.Equal(t, "Bob", off[0].User.Name)
	assert.Equal(t, "Charlie", off[1].User.Name)
	assert.Empty(t, leave.WhoIsOff(day(t, "2024-06-15"), requests, users))
}

func TestUpcomingLeave(t *testing.T) {
	requests := []leave.LeaveRequest{
		request("late", "u1", span(t, "2024-09-01", "2024-09-01"), leave.LeaveAnnual, leave.Approved{}),
		request("past", "u1", span(t, "2024-05-01", "2024-05-01"), leave.LeaveAnnual, leave.Approved{}),
		request("soon", "u1", span(t, "2024-06-10", "2024-06-10"), leave.LeaveAnnual, leave.Approved{}),
		request("pending", "u1", span(t, "2024-06-11", "2024-06-11"), leave.LeaveAnnual, leave.Pending{}),
		request("mid", "u1", span(t, "2024-07-01", "2024-07-01"), leave.LeaveAnnual, leave.Approved{}),
		request("other", "u2", span(t, "2024-06-10", "2024-06-10"), leave.LeaveAnnual, leave.Approved{}),
	}

	got := leave.UpcomingLeave("u1", requests, day(t, "2024-06-01"), 2)

	require.Len(t, got, 2)
	assert.Equal(t, leave.RequestID("soon"), got[0].ID)
	assert.Equal(t, leave.RequestID("mid"), got[1].ID)
}

func TestNextBankHoliday(t *testing.T) {
	holidays := []leave.BankHoliday{
		{Date: day(t, "2025-01-01"), Name: "New Year's Day"},
		{Date: day(t, "2024-12-25"), Name: "Christmas Day"},
		{Date: day(t, "2024-12-26"), Name: "Boxing Day"},
	}

	h, ok := leave.NextBankHoliday(holidays, day(t, "2024-12-25"))
	require.True(t, ok)
	assert.Equal(t, "Christmas Day", h.Name)

	h, ok = leave.NextBankHoliday(holidays, day(t, "2024-12-27"))
	require.True(t, ok)
	assert.Equal(t, "New Year's Day", h.Name)

	_, ok = leave.NextBankHoliday(holidays, day(t, "2025-01-02"))
	assert.False(t, ok)
}

func TestDashboard(t *testing.T) {
	users := engineering()
	users[0].TakenLeave = decimal.NewFromInt(12)
	s := &leave.Snapshot{
		Users:    users,
		Holidays: []leave.BankHoliday{{Date: day(t, "2024-12-25"), Name: "Christmas Day"}},
		Requests: []leave.LeaveRequest{
			request("r1", "u1", span(t, "2024-06-10", "2024-06-12"), leave.LeaveAnnual, leave.Pending{}),
			request("r2", "u1", span(t, "2024-07-01", "2024-07-01"), leave.LeaveAnnual, leave.Approved{}),
			request("r3", "u3", span(t, "2024-07-01", "2024-07-01"), leave.LeaveAnnual, leave.Pending{}),
		},
	}
	today := day(t, "2024-06-01")

	t.Run("employee", func(t *testing.T) {
		sum := leave.Dashboard(s, users[0], today)

		assert.True(t, sum.RemainingAllowance.Equal(decimal.NewFromInt(13)))
		assert.Equal(t, 1, sum.MyPending)
		assert.Zero(t, sum.PendingApprovals, "employees have no approvals queue")
		require.Len(t, sum.Upcoming, 1)
		require.NotNil(t, sum.NextBankHoliday)
		assert.Equal(t, "Christmas Day", sum.NextBankHoliday.Name)
	})

	t.Run("manager", func(t *testing.T) {
		sum := leave.Dashboard(s, users[1], today)
		assert.Equal(t, 2, sum.PendingApprovals)
	})
}
