/*
store.go - The external store collaborator and the in-memory snapshot

PURPOSE:
  The leave core does not own persistence. It reads users, teams, holidays
  and requests through Reader and writes requests through Writer. Any
  backing service fits as long as it implements these.

WRITE CONTRACT:
  - CreateRequest stores the record as given (id and Pending outcome are
    set by RequestService) and returns what was stored.
  - UpdateRequestStatus must only succeed while the stored request is still
    pending; otherwise it returns an error matching ErrInvalidState. This is
    what keeps a decision one-way when two approvers race.
  - Unknown ids return an error matching ErrNotFound.

FIELD NAMES:
  Translating between a snake_case wire/column shape and these structs is
  the implementation's job.

IMPLEMENTATIONS:
  - leave/store/memory.go: in-memory (tests, demo)
  - store/sqlite/sqlite.go: SQLite

SNAPSHOT:
  Snapshot is the state a caller computes over. It is loaded in one go and
  never assumed authoritative after a write: reload after every mutation.
*/
package leave

import "context"

// =============================================================================
// STORE - Interface to the external data store
// =============================================================================

// Reader bulk-loads reference data and requests. No pagination contract.
type Reader interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListTeams(ctx context.Context) ([]Team, error)
	ListBankHolidays(ctx context.Context) ([]BankHoliday, error)

	// ListRequests returns requests in insertion order.
	ListRequests(ctx context.Context) ([]LeaveRequest, error)

	GetUser(ctx context.Context, id UserID) (User, error)
	GetRequest(ctx context.Context, id RequestID) (LeaveRequest, error)
}

// Writer persists request creation and status changes.
type Writer interface {
	CreateRequest(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	UpdateRequestStatus(ctx context.Context, id RequestID, outcome Outcome) (LeaveRequest, error)
}

type Store interface {
	Reader
	Writer
}

// =============================================================================
// SNAPSHOT - Explicit application state
// =============================================================================

type Snapshot struct {
	Users    []User
	Teams    []Team
	Holidays []BankHoliday
	Requests []LeaveRequest
}

// LoadSnapshot reads everything the core computes over.
func LoadSnapshot(ctx context.Context, r Reader) (*Snapshot, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	teams, err := r.ListTeams(ctx)
	if err != nil {
		return nil, storeErr("list teams", err)
	}
	holidays, err := r.ListBankHolidays(ctx)
	if err != nil {
		return nil, storeErr("list bank holidays", err)
	}
	requests, err := r.ListRequests(ctx)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	return &Snapshot{Users: users, Teams: teams, Holidays: holidays, Requests: requests}, nil
}

// User looks up a user by id.
func (s *Snapshot) User(id UserID) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Request looks up a request by id.
func (s *Snapshot) Request(id RequestID) (LeaveRequest, bool) {
	for _, r := range s.Requests {
		if r.ID == id {
			return r, true
		}
	}
	return LeaveRequest{}, false
}

// TeamMembers returns the users of a team, the manager included.
func (s *Snapshot) TeamMembers(teamID TeamID) []User {
	return TeamMembers(teamID, s.Users)
}

// TeamMembers filters users by team id, preserving order.
func TeamMembers(teamID TeamID, users []User) []User {
	var members []User
	for _, u := range users {
		if u.TeamID == teamID {
			members = append(members, u)
		}
	}
	return members
}
