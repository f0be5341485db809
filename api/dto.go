/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The wire shape is
  snake_case (start_date, rejection_reason, ...) and decouples the leave
  core's types from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DAY AMOUNTS:
  Entitlement, taken and remaining days are decimals in the core and JSON
  numbers on the wire.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-dashboard/leave"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

type UserDTO struct {
	ID                     string  `json:"id"`
	FullName               string  `json:"full_name"`
	Role                   string  `json:"role"`
	RoleLabel              string  `json:"role_label"`
	TeamID                 string  `json:"team_id,omitempty"`
	SiteID                 string  `json:"site_id,omitempty"`
	AvatarURL              string  `json:"avatar_url,omitempty"`
	AnnualLeaveEntitlement float64 `json:"annual_leave_entitlement"`
	TakenLeave             float64 `json:"taken_leave"`
	RemainingAllowance     float64 `json:"remaining_allowance"`
}

type TeamDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ManagerID string `json:"manager_id,omitempty"`
}

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type RequestDTO struct {
	ID                       string  `json:"id"`
	UserID                   string  `json:"user_id"`
	UserName                 string  `json:"user_name,omitempty"`
	StartDate                string  `json:"start_date"`
	EndDate                  string  `json:"end_date"`
	DurationDays             int     `json:"duration_days"`
	Type                     string  `json:"type"`
	TypeLabel                string  `json:"type_label"`
	Status                   string  `json:"status"`
	Notes                    string  `json:"notes,omitempty"`
	RejectionReason          *string `json:"rejection_reason,omitempty"`
	IsBankHolidayWorkRequest bool    `json:"is_bank_holiday_work_request"`
	CreatedAt                string  `json:"created_at,omitempty"`
}

// SubmitRequest is the body of POST /api/requests. The requester is the
// acting user.
type SubmitRequest struct {
	StartDate                string `json:"start_date"`
	EndDate                  string `json:"end_date"`
	Type                     string `json:"type"`
	Notes                    string `json:"notes"`
	IsBankHolidayWorkRequest bool   `json:"is_bank_holiday_work_request"`
}

// RejectRequest is the optional body of POST /api/requests/{id}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

type ConflictDTO struct {
	RequestID   string `json:"request_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// SubmitResponse returns the stored request together with advisory conflicts.
type SubmitResponse struct {
	Request   RequestDTO    `json:"request"`
	Conflicts []ConflictDTO `json:"conflicts"`
}

type ConflictsResponse struct {
	Conflicts []ConflictDTO `json:"conflicts"`
}

// ApprovalDTO is one entry of the approver's queue.
type ApprovalDTO struct {
	Request   RequestDTO    `json:"request"`
	Conflicts []ConflictDTO `json:"conflicts"`
}

// =============================================================================
// DASHBOARD / CALENDAR / ANALYTICS
// =============================================================================

type DashboardDTO struct {
	User               UserDTO      `json:"user"`
	RemainingAllowance float64      `json:"remaining_allowance"`
	MyPending          int          `json:"my_pending"`
	PendingApprovals   int          `json:"pending_approvals"`
	CanApprove         bool         `json:"can_approve"`
	Upcoming           []RequestDTO `json:"upcoming"`
	NextBankHoliday    *HolidayDTO  `json:"next_bank_holiday,omitempty"`
}

type AbsenceDTO struct {
	UserID   string     `json:"user_id"`
	UserName string     `json:"user_name"`
	Request  RequestDTO `json:"request"`
}

type CalendarDTO struct {
	Day      string       `json:"day"`
	Absences []AbsenceDTO `json:"absences"`
}

type MonthCountDTO struct {
	Month    string `json:"month"`
	Requests int    `json:"requests"`
}

type TypeCountDTO struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type BradfordDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Spells int    `json:"spells"`
	Score  int    `json:"score"`
	Rating string `json:"rating"`
}

type AnalyticsDTO struct {
	Monthly      []MonthCountDTO `json:"monthly"`
	Distribution []TypeCountDTO  `json:"distribution"`
	Bradford     []BradfordDTO   `json:"bradford"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toUserDTO(u leave.User) UserDTO {
	return UserDTO{
		ID:                     string(u.ID),
		FullName:               u.Name,
		Role:                   string(u.Role),
		RoleLabel:              u.Role.Label(),
		TeamID:                 string(u.TeamID),
		SiteID:                 u.SiteID,
		AvatarURL:              u.Avatar,
		AnnualLeaveEntitlement: u.AnnualLeaveEntitlement.InexactFloat64(),
		TakenLeave:             u.TakenLeave.InexactFloat64(),
		RemainingAllowance:     leave.RemainingAllowance(u).InexactFloat64(),
	}
}

func toTeamDTO(t leave.Team) TeamDTO {
	return TeamDTO{ID: string(t.ID), Name: t.Name, ManagerID: string(t.ManagerID)}
}

func toHolidayDTO(h leave.BankHoliday) HolidayDTO {
	return HolidayDTO{Date: h.Date.String(), Name: h.Name}
}

// toRequestDTO resolves the user name from s when s is non-nil.
func toRequestDTO(r leave.LeaveRequest, s *leave.Snapshot) RequestDTO {
	dto := RequestDTO{
		ID:                       string(r.ID),
		UserID:                   string(r.UserID),
		StartDate:                r.Period.Start.String(),
		EndDate:                  r.Period.End.String(),
		DurationDays:             leave.Duration(r),
		Type:                     string(r.Type),
		TypeLabel:                r.Type.Label(),
		Status:                   string(r.Status()),
		Notes:                    r.Notes,
		IsBankHolidayWorkRequest: r.IsBankHolidayWorkRequest,
	}
	if reason, ok := r.RejectionReason(); ok {
		dto.RejectionReason = &reason
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if s != nil {
		if u, ok := s.User(r.UserID); ok {
			dto.UserName = u.Name
		}
	}
	return dto
}

func toRequestDTOs(rs []leave.LeaveRequest, s *leave.Snapshot) []RequestDTO {
	out := make([]RequestDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestDTO(r, s))
	}
	return out
}

func toConflictDTOs(cs []leave.Conflict) []ConflictDTO {
	out := make([]ConflictDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, ConflictDTO{
			RequestID:   string(c.RequestID),
			UserID:      string(c.UserID),
			UserName:    c.UserName,
			StartDate:   c.Period.Start.String(),
			EndDate:     c.Period.End.String(),
			Description: c.Description(),
		})
	}
	return out
}

func toAnalyticsDTO(rep leave.Report) AnalyticsDTO {
	dto := AnalyticsDTO{
		Monthly:      make([]MonthCountDTO, 0, len(rep.Monthly)),
		Distribution: make([]TypeCountDTO, 0, len(rep.Distribution)),
		Bradford:     make([]BradfordDTO, 0, len(rep.Bradford)),
	}
	for _, m := range rep.Monthly {
		dto.Monthly = append(dto.Monthly, MonthCountDTO{Month: m.Name(), Requests: m.Requests})
	}
	for _, tc := range rep.Distribution {
		dto.Distribution = append(dto.Distribution, TypeCountDTO{Type: string(tc.Type), Label: tc.Type.Label(), Count: tc.Count})
	}
	for _, b := range rep.Bradford {
		dto.Bradford = append(dto.Bradford, BradfordDTO{
			UserID: string(b.UserID),
			Name:   b.Name,
			Spells: b.Spells,
			Score:  b.Score,
			Rating: string(b.Rating),
		})
	}
	return dto
}
