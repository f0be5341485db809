/*
lifecycle.go - Leave request lifecycle

PURPOSE:
  Creates requests in the Pending state and moves them, exactly once, to
  Approved or Rejected.

STATE MACHINE:

      Submit              Decide(Approve)
    ─────────▶ Pending ───────────────────▶ Approved   (terminal)
                  │
                  │  Decide(Reject, reason)
                  └───────────────────────▶ Rejected   (terminal)

  Deciding a terminal request fails with ErrInvalidState and leaves the
  stored record untouched.

VALIDATION ON SUBMIT:
  1. End before start -> ErrInvalidRange (nothing is written)
  2. Unknown leave type -> ErrInvalidArgument
  3. Unknown requester  -> ErrNotFound
  Remaining allowance is NOT checked here; approval is the allowance gate.

STORE:
  All writes go through the Writer. The in-memory Snapshot a caller holds
  is stale after any write; reload it.

EXAMPLE:
  svc := leave.NewRequestService(store)
  req, err := svc.Submit(ctx, leave.SubmitInput{RequesterID: "u1", ...})
  req, err = svc.Decide(ctx, req.ID, leave.Reject, "coverage")
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// DECISION
// =============================================================================

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func (d Decision) outcome(reason string) (Outcome, error) {
	switch d {
	case Approve:
		return Approved{}, nil
	case Reject:
		return Rejected{Reason: reason}, nil
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", d, ErrInvalidArgument)
	}
}

// Observer is notified after successful lifecycle transitions.
type Observer interface {
	RequestSubmitted(t LeaveType)
	RequestDecided(s Status)
}

type nopObserver struct{}

func (nopObserver) RequestSubmitted(LeaveType) {}
func (nopObserver) RequestDecided(Status)      {}

// =============================================================================
// REQUEST SERVICE
// =============================================================================

type RequestService struct {
	Store    Store
	Log      *zap.SugaredLogger
	Observer Observer
	Now      func() time.Time
	NewID    func() string
}

// NewRequestService returns a service with a nop logger, a nop observer,
// wall-clock time and UUID ids. Override the fields as needed.
func NewRequestService(store Store) *RequestService {
	return &RequestService{
		Store:    store,
		Log:      zap.NewNop().Sugar(),
		Observer: nopObserver{},
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// SubmitInput carries the fields of a new request.
type SubmitInput struct {
	RequesterID              UserID
	Start                    Date
	End                      Date
	Type                     LeaveType
	Notes                    string
	IsBankHolidayWorkRequest bool
}

// Submit validates in and stores a new Pending request.
func (rs *RequestService) Submit(ctx context.Context, in SubmitInput) (LeaveRequest, error) {
	period, err := NewDateRange(in.Start, in.End)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !in.Type.Valid() {
		return LeaveRequest{}, fmt.Errorf("leave type %q: %w", in.Type, ErrInvalidArgument)
	}
	if _, err := rs.Store.GetUser(ctx, in.RequesterID); err != nil {
		return LeaveRequest{}, storeErr("get user", err)
	}

	req := LeaveRequest{
		ID:                       RequestID(rs.NewID()),
		UserID:                   in.RequesterID,
		Period:                   period,
		Type:                     in.Type,
		Outcome:                  Pending{},
		Notes:                    in.Notes,
		IsBankHolidayWorkRequest: in.IsBankHolidayWorkRequest,
		CreatedAt:                rs.Now().UTC(),
	}

	created, err := rs.Store.CreateRequest(ctx, req)
	if err != nil {
		rs.Log.Errorw("create request failed", "user_id", in.RequesterID, "error", err)
		return LeaveRequest{}, storeErr("create request", err)
	}

	rs.Observer.RequestSubmitted(created.Type)
	rs.Log.Infow("request submitted",
		"request_id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"period", created.Period.String(),
	)
	return created, nil
}

// Decide moves a Pending request to Approved or Rejected. reason is kept
// only on rejection and may be empty.
func (rs *RequestService) Decide(ctx context.Context, id RequestID, decision Decision, reason string) (LeaveRequest, error) {
	outcome, err := decision.outcome(reason)
	if err != nil {
		return LeaveRequest{}, err
	}

	current, err := rs.Store.GetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, storeErr("get request", err)
	}
	if !current.IsPending() {
		return LeaveRequest{}, &InvalidStateError{RequestID: id, Status: current.Status()}
	}

	// The store re-checks pending, so a concurrent decision still fails here.
	updated, err := rs.Store.UpdateRequestStatus(ctx, id, outcome)
	if err != nil {
		rs.Log.Warnw("update request status failed", "request_id", id, "error", err)
		return LeaveRequest{}, storeErr("update request status", err)
	}

	rs.Observer.RequestDecided(updated.Status())
	rs.Log.Infow("request decided", "request_id", id, "status", updated.Status())
	return updated, nil
}

// DecideAs is Decide gated by the access policy: actor must be allowed to
// approve and the request must be one of actor's visible pending approvals.
func (rs *RequestService) DecideAs(ctx context.Context, actorID UserID, id RequestID, decision Decision, reason string) (LeaveRequest, error) {
	actor, err := rs.Store.GetUser(ctx, actorID)
	if err != nil {
		return LeaveRequest{}, storeErr("get user", err)
	}
	req, err := rs.Store.GetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, storeErr("get request", err)
	}

	users, err := rs.Store.ListUsers(ctx)
	if err != nil {
		return LeaveRequest{}, storeErr("list users", err)
	}
	// Access is checked before status and ignores the current outcome.
	asPending := req
	asPending.Outcome = Pending{}
	if !CanDecide(actor, asPending, users) {
		return LeaveRequest{}, fmt.Errorf("%s may not decide request %s: %w", actor.ID, id, ErrForbidden)
	}
	if !req.IsPending() {
		return LeaveRequest{}, &InvalidStateError{RequestID: id, Status: req.Status()}
	}

	return rs.Decide(ctx, id, decision, reason)
}
