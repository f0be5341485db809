/*
analytics.go - Allowance and absence analytics

PURPOSE:
  The numbers behind the dashboard and the analytics page. Every function
  is pure over the given slices and only counts APPROVED requests.

SIMPLIFICATIONS:
  - Monthly histogram: a request spanning months counts only under its
    start month. Years are ignored (all Januaries share a bucket).
  - Bradford Factor: B = S² × D with D = S, i.e. every sick spell counts as
    one day regardless of its length.
  - Remaining allowance is not floored at zero; a negative value means the
    store holds more taken leave than entitlement.
*/
package leave

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOWANCE
// =============================================================================

// RemainingAllowance is entitlement minus taken leave, in days. It can be negative.
func RemainingAllowance(u User) decimal.Decimal {
	return u.AnnualLeaveEntitlement.Sub(u.TakenLeave)
}

// =============================================================================
// MONTHLY HISTOGRAM
// =============================================================================

type MonthCount struct {
	Month    time.Month
	Requests int
}

// Name returns the short month name ("Jan").
func (m MonthCount) Name() string {
	return m.Month.String()[:3]
}

// MonthlyAbsenceHistogram returns 12 buckets, January first, counting
// approved requests by the month of their start date.
func MonthlyAbsenceHistogram(requests []LeaveRequest) []MonthCount {
	var counts [12]int
	for _, r := range requests {
		if r.IsApproved() {
			counts[r.Period.Start.Month()-1]++
		}
	}

	out := make([]MonthCount, 12)
	for i := range out {
		out[i] = MonthCount{Month: time.Month(i + 1), Requests: counts[i]}
	}
	return out
}

// =============================================================================
// LEAVE TYPE DISTRIBUTION
// =============================================================================

type TypeCount struct {
	Type  LeaveType
	Count int
}

// LeaveTypeDistribution counts approved requests per type, in LeaveType
// declaration order. Types with no approved request are omitted.
func LeaveTypeDistribution(requests []LeaveRequest) []TypeCount {
	counts := make(map[LeaveType]int)
	for _, r := range requests {
		if r.IsApproved() {
			counts[r.Type]++
		}
	}

	var out []TypeCount
	for _, t := range leaveTypes {
		if c := counts[t]; c > 0 {
			out = append(out, TypeCount{Type: t, Count: c})
		}
	}
	return out
}

// =============================================================================
// BRADFORD FACTOR
// =============================================================================

type Rating string

const (
	RatingHealthy Rating = "Healthy"
	RatingMonitor Rating = "Monitor"
	RatingConcern Rating = "Concern"
)

const (
	bradfordConcernAbove = 50
	bradfordMonitorAbove = 20
)

// SickSpells counts userID's approved sick requests.
func SickSpells(userID UserID, requests []LeaveRequest) int {
	spells := 0
	for _, r := range requests {
		if r.UserID == userID && r.Type == LeaveSick && r.IsApproved() {
			spells++
		}
	}
	return spells
}

// BradfordFactor returns S² × D for userID, with D = S.
func BradfordFactor(userID UserID, requests []LeaveRequest) int {
	s := SickSpells(userID, requests)
	d := s
	return s * s * d
}

// ClassifyBradford maps a score to its rating.
func ClassifyBradford(score int) Rating {
	switch {
	case score > bradfordConcernAbove:
		return RatingConcern
	case score > bradfordMonitorAbove:
		return RatingMonitor
	default:
		return RatingHealthy
	}
}

type BradfordScore struct {
	UserID UserID
	Name   string
	Spells int
	Score  int
	Rating Rating
}

// BradfordScores scores every user, highest first. Equal scores keep the
// order of users.
func BradfordScores(users []User, requests []LeaveRequest) []BradfordScore {
	scores := make([]BradfordScore, len(users))
	for i, u := range users {
		score := BradfordFactor(u.ID, requests)
		scores[i] = BradfordScore{
			UserID: u.ID,
			Name:   u.Name,
			Spells: SickSpells(u.ID, requests),
			Score:  score,
			Rating: ClassifyBradford(score),
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// =============================================================================
// REPORT
// =============================================================================

// Report bundles the analytics page.
type Report struct {
	Monthly      []MonthCount
	Distribution []TypeCount
	Bradford     []BradfordScore
}

func BuildReport(s *Snapshot) Report {
	return Report{
		Monthly:      MonthlyAbsenceHistogram(s.Requests),
		Distribution: LeaveTypeDistribution(s.Requests),
		Bradford:     BradfordScores(s.Users, s.Requests),
	}
}
