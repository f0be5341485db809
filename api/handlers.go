/*
handlers.go - HTTP API handlers for the leave dashboard

PURPOSE:
  Exposes the leave core via REST API. Handles HTTP request/response and
  JSON serialization, and delegates every decision to package leave.

ENDPOINTS:
  Reference data:
    GET    /api/users                   Users with remaining allowance
    GET    /api/teams                   Teams
    GET    /api/holidays                Bank holidays

  Acting user (X-User-ID header):
    GET    /api/dashboard               Dashboard summary
    POST   /api/requests                Submit a request (returns conflicts)
    GET    /api/requests/conflicts      Preview conflicts for ?start=&end=
    GET    /api/approvals               Pending approvals visible to the user
    POST   /api/requests/{id}/approve   Approve a pending request
    POST   /api/requests/{id}/reject    Reject with an optional reason
    GET    /api/analytics               Histogram, distribution, Bradford

  Other:
    GET    /api/requests                All requests (?user_id= filter)
    GET    /api/calendar                Who is off on ?day= (default today)
    POST   /api/demo/reset              Reload demo data (when enabled)

REQUEST FLOW:
  1. Resolve the acting user from X-User-ID
  2. Load a fresh Snapshot from the store
  3. Call the leave core
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status derived from the leave
  sentinel they match:
  - 400: ErrInvalidRange, ErrInvalidArgument
  - 403: ErrForbidden
  - 404: ErrNotFound
  - 409: ErrInvalidState
  - 503: ErrStoreUnavailable
  - 500: anything else

SECURITY NOTE:
  X-User-ID is trusted as-is. It stands in for the hosted identity
  provider; there is no authentication in this server.

SEE ALSO:
  - dto.go: Request/response data structures
  - demo.go: Demo data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-dashboard/leave"
	"go.uber.org/zap"
)

const userHeader = "X-User-ID"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    leave.Store
	Requests *leave.RequestService
	Log      *zap.SugaredLogger
	Metrics  *Metrics

	// Demo is nil unless demo reloading is enabled.
	Demo Seeder

	// Now is the clock used for "today".
	Now func() time.Time
}

// NewHandler wires a RequestService over store that reports to metrics.
func NewHandler(store leave.Store, log *zap.SugaredLogger, metrics *Metrics) *Handler {
	svc := leave.NewRequestService(store)
	svc.Log = log
	if metrics != nil {
		svc.Observer = metrics
	}
	return &Handler{
		Store:    store,
		Requests: svc,
		Log:      log,
		Metrics:  metrics,
		Now:      time.Now,
	}
}

func (h *Handler) today() leave.Date {
	return leave.DateOf(h.Now())
}

func (h *Handler) snapshot(ctx context.Context) (*leave.Snapshot, error) {
	return leave.LoadSnapshot(ctx, h.Store)
}

// actingUser resolves the X-User-ID header against the snapshot.
func actingUser(r *http.Request, s *leave.Snapshot) (leave.User, error) {
	id := r.Header.Get(userHeader)
	if id == "" {
		return leave.User{}, fmt.Errorf("missing %s header: %w", userHeader, leave.ErrInvalidArgument)
	}
	u, ok := s.User(leave.UserID(id))
	if !ok {
		return leave.User{}, &leave.NotFoundError{Kind: "user", ID: id}
	}
	return u, nil
}

func (h *Handler) countConflicts(n int) {
	if h.Metrics != nil && n > 0 {
		h.Metrics.ConflictWarnings(n)
	}
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// ListUsers returns all users.
// GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, 0, len(s.Users))
	for _, u := range s.Users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": dtos})
}

// ListTeams returns all teams.
// GET /api/teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list teams", err)
		return
	}

	dtos := make([]TeamDTO, 0, len(s.Teams))
	for _, t := range s.Teams {
		dtos = append(dtos, toTeamDTO(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": dtos})
}

// ListHolidays returns all bank holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(s.Holidays))
	for _, hol := range s.Holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns the acting user's summary.
// GET /api/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}
	actor, err := actingUser(r, s)
	if err != nil {
		h.writeDomainError(w, r, "Unknown acting user", err)
		return
	}

	sum := leave.Dashboard(s, actor, h.today())
	dto := DashboardDTO{
		User:               toUserDTO(sum.User),
		RemainingAllowance: sum.RemainingAllowance.InexactFloat64(),
		MyPending:          sum.MyPending,
		PendingApprovals:   sum.PendingApprovals,
		CanApprove:         leave.CanApprove(actor.Role),
		Upcoming:           toRequestDTOs(sum.Upcoming, s),
	}
	if sum.NextBankHoliday != nil {
		hol := toHolidayDTO(*sum.NextBankHoliday)
		dto.NextBankHoliday = &hol
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// REQUESTS
// =============================================================================

// ListRequests returns requests in insertion order, optionally for one user.
// GET /api/requests?user_id=
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}

	requests := s.Requests
	if uid := r.URL.Query().Get("user_id"); uid != "" {
		var mine []leave.LeaveRequest
		for _, req := range requests {
			if req.UserID == leave.UserID(uid) {
				mine = append(mine, req)
			}
		}
		requests = mine
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": toRequestDTOs(requests, s)})
}

// SubmitRequest creates a pending request for the acting user. Conflicts
// are returned as warnings and never block the submission.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	s, err := h.snapshot(ctx)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}
	actor, err := actingUser(r, s)
	if err != nil {
		h.writeDomainError(w, r, "Unknown acting user", err)
		return
	}

	start, err := leave.ParseDate(body.StartDate)
	if err != nil {
		h.writeDomainError(w, r, "Invalid start_date", err)
		return
	}
	end, err := leave.ParseDate(body.EndDate)
	if err != nil {
		h.writeDomainError(w, r, "Invalid end_date", err)
		return
	}
	typ, err := leave.ParseLeaveType(body.Type)
	if err != nil {
		h.writeDomainError(w, r, "Invalid type", err)
		return
	}

	created, err := h.Requests.Submit(ctx, leave.SubmitInput{
		RequesterID:              actor.ID,
		Start:                    start,
		End:                      end,
		Type:                     typ,
		Notes:                    body.Notes,
		IsBankHolidayWorkRequest: body.IsBankHolidayWorkRequest,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to submit request", err)
		return
	}

	// The snapshot predates the write; conflicts only look at approved
	// requests of teammates, which the submit did not change.
	conflicts := s.ConflictsFor(actor.ID, created.Period)
	h.countConflicts(len(conflicts))

	writeJSON(w, http.StatusCreated, SubmitResponse{
		Request:   toRequestDTO(created, s),
		Conflicts: toConflictDTOs(conflicts),
	})
}

// PreviewConflicts lists teammates already off during ?start=&end=.
// GET /api/requests/conflicts
func (h *Handler) PreviewConflicts(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}
	actor, err := actingUser(r, s)
	if err != nil {
		h.writeDomainError(w, r, "Unknown acting user", err)
		return
	}

	start, err := leave.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		h.writeDomainError(w, r, "Invalid start", err)
		return
	}
	end, err := leave.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		h.writeDomainError(w, r, "Invalid end", err)
		return
	}
	period, err := leave.NewDateRange(start, end)
	if err != nil {
		h.writeDomainError(w, r, "Invalid range", err)
		return
	}

	conflicts := s.ConflictsFor(actor.ID, period)
	writeJSON(w, http.StatusOK, ConflictsResponse{Conflicts: toConflictDTOs(conflicts)})
}

// =============================================================================
// APPROVALS
// =============================================================================

// ListApprovals returns the pending requests the acting user may decide,
// each with the teammates already off during it.
// GET /api/approvals
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}
	actor, err := actingUser(r, s)
	if err != nil {
		h.writeDomainError(w, r, "Unknown acting user", err)
		return
	}
	if !leave.CanApprove(actor.Role) {
		h.writeDomainError(w, r, "Approvals not available",
			fmt.Errorf("role %s cannot approve: %w", actor.Role, leave.ErrForbidden))
		return
	}

	pending := leave.VisiblePendingApprovals(actor, s.Requests, s.Users)
	dtos := make([]ApprovalDTO, 0, len(pending))
	total := 0
	for _, req := range pending {
		conflicts := s.ConflictsForRequest(req)
		total += len(conflicts)
		dtos = append(dtos, ApprovalDTO{
			Request:   toRequestDTO(req, s),
			Conflicts: toConflictDTOs(conflicts),
		})
	}
	h.countConflicts(total)

	writeJSON(w, http.StatusOK, map[string]any{"approvals": dtos})
}

// ApproveRequest approves a pending request.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.Approve, "")
}

// defaultRejectionReason is stored when a reject carries no reason.
const defaultRejectionReason = "Manager declined request due to coverage."

// RejectRequest rejects a pending request. The body is optional.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	reason := body.Reason
	if reason == "" {
		reason = defaultRejectionReason
	}
	h.decide(w, r, leave.Reject, reason)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, d leave.Decision, reason string) {
	actorID := r.Header.Get(userHeader)
	if actorID == "" {
		h.writeDomainError(w, r, "Unknown acting user",
			fmt.Errorf("missing %s header: %w", userHeader, leave.ErrInvalidArgument))
		return
	}
	id := leave.RequestID(chi.URLParam(r, "id"))

	updated, err := h.Requests.DecideAs(r.Context(), leave.UserID(actorID), id, d, reason)
	if err != nil {
		h.writeDomainError(w, r, "Failed to decide request", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"request":    toRequestDTO(updated, nil),
		"decided_by": actorID,
	})
}

// =============================================================================
// CALENDAR / ANALYTICS
// =============================================================================

// GetCalendar lists approved absences on ?day= (default today).
// GET /api/calendar
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if raw := r.URL.Query().Get("day"); raw != "" {
		d, err := leave.ParseDate(raw)
		if err != nil {
			h.writeDomainError(w, r, "Invalid day", err)
			return
		}
		day = d
	}

	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}

	absences := leave.WhoIsOff(day, s.Requests, s.Users)
	dto := CalendarDTO{Day: day.String(), Absences: make([]AbsenceDTO, 0, len(absences))}
	for _, a := range absences {
		dto.Absences = append(dto.Absences, AbsenceDTO{
			UserID:   string(a.User.ID),
			UserName: a.User.Name,
			Request:  toRequestDTO(a.Request, s),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetAnalytics returns the team analytics report.
// GET /api/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to load data", err)
		return
	}
	actor, err := actingUser(r, s)
	if err != nil {
		h.writeDomainError(w, r, "Unknown acting user", err)
		return
	}
	if !leave.CanViewAnalytics(actor.Role) {
		h.writeDomainError(w, r, "Analytics not available",
			fmt.Errorf("role %s cannot view analytics: %w", actor.Role, leave.ErrForbidden))
		return
	}

	writeJSON(w, http.StatusOK, toAnalyticsDTO(leave.BuildReport(s)))
}

// =============================================================================
// DEMO
// =============================================================================

// ResetDemo clears the store and reloads the demo data.
// POST /api/demo/reset
func (h *Handler) ResetDemo(w http.ResponseWriter, r *http.Request) {
	if h.Demo == nil {
		writeError(w, http.StatusNotFound, "Demo mode is disabled", nil)
		return
	}
	if err := ResetDemo(r.Context(), h.Demo, h.today()); err != nil {
		h.writeDomainError(w, r, "Failed to reset demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps leave errors to an HTTP status and a short error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, leave.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, leave.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, leave.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, leave.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, leave.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Errorw(message, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}
