// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/leave-dashboard/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Compile-time check that Memory implements leave.Store
var _ leave.Store = (*Memory)(nil)

type Memory struct {
	mu       sync.RWMutex
	users    []leave.User
	teams    []leave.Team
	holidays []leave.BankHoliday
	requests []leave.LeaveRequest
	index    map[leave.RequestID]int
}

func NewMemory() *Memory {
	return &Memory{index: make(map[leave.RequestID]int)}
}

// Seed replaces all reference data and requests.
func (m *Memory) Seed(users []leave.User, teams []leave.Team, holidays []leave.BankHoliday, requests []leave.LeaveRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = append([]leave.User(nil), users...)
	m.teams = append([]leave.Team(nil), teams...)
	m.holidays = append([]leave.BankHoliday(nil), holidays...)
	m.requests = nil
	m.index = make(map[leave.RequestID]int)
	for _, r := range requests {
		m.appendLocked(r)
	}
}

func (m *Memory) appendLocked(r leave.LeaveRequest) {
	m.index[r.ID] = len(m.requests)
	m.requests = append(m.requests, r)
}

func (m *Memory) ListUsers(_ context.Context) ([]leave.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.User(nil), m.users...), nil
}

func (m *Memory) ListTeams(_ context.Context) ([]leave.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.Team(nil), m.teams...), nil
}

func (m *Memory) ListBankHolidays(_ context.Context) ([]leave.BankHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.BankHoliday(nil), m.holidays...), nil
}

// ListRequests returns requests in insertion order.
func (m *Memory) ListRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]leave.LeaveRequest(nil), m.requests...), nil
}

func (m *Memory) GetUser(_ context.Context, id leave.UserID) (leave.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return leave.User{}, &leave.NotFoundError{Kind: "user", ID: string(id)}
}

func (m *Memory) GetRequest(_ context.Context, id leave.RequestID) (leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "request", ID: string(id)}
	}
	return m.requests[i], nil
}

// CreateRequest appends a request. Append-only: ids must be unique.
func (m *Memory) CreateRequest(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[r.ID]; exists {
		return leave.LeaveRequest{}, fmt.Errorf("request %s already exists: %w", r.ID, leave.ErrInvalidArgument)
	}
	m.appendLocked(r)
	return r, nil
}

// UpdateRequestStatus sets the outcome of a request that is still pending.
func (m *Memory) UpdateRequestStatus(_ context.Context, id leave.RequestID, outcome leave.Outcome) (leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "request", ID: string(id)}
	}
	r := m.requests[i]
	if !r.IsPending() {
		return leave.LeaveRequest{}, &leave.InvalidStateError{RequestID: id, Status: r.Status()}
	}
	r.Outcome = outcome
	m.requests[i] = r
	return r, nil
}

// =============================================================================
// FAILING STORE - Simulates an unreachable backend
// =============================================================================

// Unavailable wraps a Store and fails every call with Err once Down is set.
type Unavailable struct {
	leave.Store
	mu   sync.Mutex
	down bool
	Err  error
}

func NewUnavailable(s leave.Store, err error) *Unavailable {
	return &Unavailable{Store: s, Err: err}
}

func (u *Unavailable) SetDown(down bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.down = down
}

func (u *Unavailable) fail() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.down {
		return u.Err
	}
	return nil
}

func (u *Unavailable) ListUsers(ctx context.Context) ([]leave.User, error) {
	if err := u.fail(); err != nil {
		return nil, err
	}
	return u.Store.ListUsers(ctx)
}

func (u *Unavailable) ListTeams(ctx context.Context) ([]leave.Team, error) {
	if err := u.fail(); err != nil {
		return nil, err
	}
	return u.Store.ListTeams(ctx)
}

func (u *Unavailable) ListBankHolidays(ctx context.Context) ([]leave.BankHoliday, error) {
	if err := u.fail(); err != nil {
		return nil, err
	}
	return u.Store.ListBankHolidays(ctx)
}

func (u *Unavailable) ListRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	if err := u.fail(); err != nil {
		return nil, err
	}
	return u.Store.ListRequests(ctx)
}

func (u *Unavailable) GetUser(ctx context.Context, id leave.UserID) (leave.User, error) {
	if err := u.fail(); err != nil {
		return leave.User{}, err
	}
	return u.Store.GetUser(ctx, id)
}

func (u *Unavailable) GetRequest(ctx context.Context, id leave.RequestID) (leave.LeaveRequest, error) {
	if err := u.fail(); err != nil {
		return leave.LeaveRequest{}, err
	}
	return u.Store.GetRequest(ctx, id)
}

func (u *Unavailable) CreateRequest(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	if err := u.fail(); err != nil {
		return leave.LeaveRequest{}, err
	}
	return u.Store.CreateRequest(ctx, r)
}

func (u *Unavailable) UpdateRequestStatus(ctx context.Context, id leave.RequestID, o leave.Outcome) (leave.LeaveRequest, error) {
	if err := u.fail(); err != nil {
		return leave.LeaveRequest{}, err
	}
	return u.Store.UpdateRequestStatus(ctx, id, o)
}
