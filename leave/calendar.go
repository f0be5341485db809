package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Duration is the inclusive number of days a request covers.
func Duration(r LeaveRequest) int {
	return r.Period.Days()
}

// Absence is an approved request resolved to its user.
type Absence struct {
	Request LeaveRequest
	User    User
}

// WhoIsOff returns the approved requests covering day. Requests whose user
// is unknown are skipped.
func WhoIsOff(day Date, requests []LeaveRequest, users []User) []Absence {
	byID := make(map[UserID]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var out []Absence
	for _, r := range requests {
		if !r.IsApproved() || !r.Period.Contains(day) {
			continue
		}
		if u, ok := byID[r.UserID]; ok {
			out = append(out, Absence{Request: r, User: u})
		}
	}
	return out
}

// UpcomingLeave returns userID's approved requests starting on or after
// from, earliest first, at most limit of them (limit <= 0 means all).
func UpcomingLeave(userID UserID, requests []LeaveRequest, from Date, limit int) []LeaveRequest {
	var out []LeaveRequest
	for _, r := range requests {
		if r.UserID == userID && r.IsApproved() && r.Period.Start.AfterOrEqual(from) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period.Start.Before(out[j].Period.Start)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NextBankHoliday returns the earliest holiday on or after from.
func NextBankHoliday(holidays []BankHoliday, from Date) (BankHoliday, bool) {
	var (
		next  BankHoliday
		found bool
	)
	for _, h := range holidays {
		if h.Date.Before(from) {
			continue
		}
		if !found || h.Date.Before(next.Date) {
			next, found = h, true
		}
	}
	return next, found
}

// PendingCount counts userID's own pending requests.
func PendingCount(userID UserID, requests []LeaveRequest) int {
	n := 0
	for _, r := range requests {
		if r.UserID == userID && r.IsPending() {
			n++
		}
	}
	return n
}

// =============================================================================
// DASHBOARD
// =============================================================================

const upcomingLeaveLimit = 3

type DashboardSummary struct {
	User               User
	RemainingAllowance decimal.Decimal
	MyPending          int
	PendingApprovals   int
	Upcoming           []LeaveRequest
	NextBankHoliday    *BankHoliday
}

// Dashboard summarises the snapshot from u's point of view on today.
func Dashboard(s *Snapshot, u User, today Date) DashboardSummary {
	sum := DashboardSummary{
		User:               u,
		RemainingAllowance: RemainingAllowance(u),
		MyPending:          PendingCount(u.ID, s.Requests),
		Upcoming:           UpcomingLeave(u.ID, s.Requests, today, upcomingLeaveLimit),
	}
	if CanApprove(u.Role) {
		sum.PendingApprovals = len(VisiblePendingApprovals(u, s.Requests, s.Users))
	}
	if h, ok := NextBankHoliday(s.Holidays, today); ok {
		sum.NextBankHoliday = &h
	}
	return sum
}
