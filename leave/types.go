/*
Package leave provides the core of the leave dashboard.

PURPOSE:
  Holds the domain model (users, teams, leave requests, bank holidays) and
  the few pieces of real logic the dashboard needs: the request approval
  state machine, role-based visibility of pending approvals, date-range
  conflict detection and absence analytics.

  The package never renders anything and never talks to a concrete
  database. It consumes the Store interfaces in store.go and works over an
  in-memory Snapshot owned by the caller.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role, LeaveType: enumerations with display labels
  - Outcome: tagged variant Pending | Approved | Rejected{Reason}
  - User, Team, BankHoliday, LeaveRequest: the records
  - Snapshot: the state a caller loads from the store and computes over

DESIGN PRINCIPLES:
  1. A request's outcome is a variant, so a rejection reason cannot exist
     on a pending or approved request.
  2. Day amounts use decimal.Decimal, never float64.
  3. Every computation is a pure function of a Snapshot.

SEE ALSO:
  - lifecycle.go: Submit/Decide
  - policy.go: who sees which pending requests
  - conflict.go: overlap warnings
  - analytics.go: allowance, histograms, Bradford Factor
*/
package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type TeamID string
type RequestID string

// =============================================================================
// ROLE
// =============================================================================

type Role string

const (
	RoleEmployee    Role = "employee"
	RoleManager     Role = "manager"
	RoleSiteManager Role = "site_manager"
	RoleAdmin       Role = "admin"
)

var roleLabels = map[Role]string{
	RoleEmployee:    "Employee",
	RoleManager:     "Manager",
	RoleSiteManager: "Site Manager",
	RoleAdmin:       "Administrator",
}

// Label returns the human readable role name.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// ParseRole accepts either the identifier ("site_manager") or the label ("Site Manager").
func ParseRole(s string) (Role, error) {
	for r, l := range roleLabels {
		if s == string(r) || s == l {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q: %w", s, ErrInvalidArgument)
}

// =============================================================================
// LEAVE TYPE
// =============================================================================

type LeaveType string

const (
	LeaveAnnual LeaveType = "annual"
	LeaveSick   LeaveType = "sick"
	LeaveWFH    LeaveType = "wfh"
	LeaveLieu   LeaveType = "lieu"
	LeaveUnpaid LeaveType = "unpaid"
)

// leaveTypes is the declaration order; analytics output follows it.
var leaveTypes = []LeaveType{LeaveAnnual, LeaveSick, LeaveWFH, LeaveLieu, LeaveUnpaid}

var leaveTypeLabels = map[LeaveType]string{
	LeaveAnnual: "Annual Leave",
	LeaveSick:   "Sick Leave",
	LeaveWFH:    "Working from Home",
	LeaveLieu:   "Time in Lieu",
	LeaveUnpaid: "Unpaid Leave",
}

// LeaveTypes returns every leave type in declaration order.
func LeaveTypes() []LeaveType {
	out := make([]LeaveType, len(leaveTypes))
	copy(out, leaveTypes)
	return out
}

func (t LeaveType) Label() string {
	if l, ok := leaveTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t LeaveType) Valid() bool {
	_, ok := leaveTypeLabels[t]
	return ok
}

// ParseLeaveType accepts either the identifier ("wfh") or the label ("Working from Home").
func ParseLeaveType(s string) (LeaveType, error) {
	for _, t := range leaveTypes {
		if s == string(t) || s == leaveTypeLabels[t] {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown leave type %q: %w", s, ErrInvalidArgument)
}

// =============================================================================
// STATUS / OUTCOME
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Outcome is the state of a request: Pending, Approved or Rejected.
// The set of implementations is closed.
type Outcome interface {
	Status() Status
	isOutcome()
}

type Pending struct{}
type Approved struct{}

// Rejected carries the approver's reason. The reason may be empty.
type Rejected struct {
	Reason string
}

func (Pending) Status() Status  { return StatusPending }
func (Approved) Status() Status { return StatusApproved }
func (Rejected) Status() Status { return StatusRejected }

func (Pending) isOutcome()  {}
func (Approved) isOutcome() {}
func (Rejected) isOutcome() {}

// OutcomeFrom rebuilds an Outcome from its stored parts. The reason is
// dropped for anything other than a rejection.
func OutcomeFrom(status Status, reason string) (Outcome, error) {
	switch status {
	case StatusPending:
		return Pending{}, nil
	case StatusApproved:
		return Approved{}, nil
	case StatusRejected:
		return Rejected{Reason: reason}, nil
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidArgument)
	}
}

// =============================================================================
// RECORDS
// =============================================================================

// User is read-only to this package; the store owns it.
type User struct {
	ID                     UserID
	Name                   string
	Role                   Role
	TeamID                 TeamID
	SiteID                 string
	Avatar                 string
	AnnualLeaveEntitlement decimal.Decimal // days
	TakenLeave             decimal.Decimal // days
}

type Team struct {
	ID        TeamID
	Name      string
	ManagerID UserID
}

type BankHoliday struct {
	Date Date
	Name string
}

// LeaveRequest is a time-off request. Period is a closed interval.
type LeaveRequest struct {
	ID                       RequestID
	UserID                   UserID
	Period                   DateRange
	Type                     LeaveType
	Outcome                  Outcome
	Notes                    string
	IsBankHolidayWorkRequest bool
	CreatedAt                time.Time
}

// Status returns the request status. A request without an outcome is pending.
func (r LeaveRequest) Status() Status {
	if r.Outcome == nil {
		return StatusPending
	}
	return r.Outcome.Status()
}

// RejectionReason returns the reason when the request was rejected.
func (r LeaveRequest) RejectionReason() (string, bool) {
	rej, ok := r.Outcome.(Rejected)
	if !ok {
		return "", false
	}
	return rej.Reason, true
}

func (r LeaveRequest) IsPending() bool  { return r.Status() == StatusPending }
func (r LeaveRequest) IsApproved() bool { return r.Status() == StatusApproved }
