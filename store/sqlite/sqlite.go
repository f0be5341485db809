/*
Package sqlite provides a SQLite-backed implementation of leave.Store.

PURPOSE:
  Persists users, teams, bank holidays and leave requests. The leave core
  only sees the leave.Reader/leave.Writer interfaces; the column names here
  follow the hosted-API shape (snake_case, full_name, avatar_url, ...) and
  are translated to the core records on the way in and out.

KEY TABLES:
  profiles:        users (entitlement and taken leave stored as decimal text)
  teams:           team -> approving manager
  bank_holidays:   static reference data
  leave_requests:  requests; seq keeps insertion order

WRITE RULES:
  - Requests are never deleted.
  - Status updates are conditional on status = 'pending'. A second decision
    finds no pending row and returns leave.ErrInvalidState.
  - rejection_reason is written only together with status = 'rejected'.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, WAL journal for concurrent readers.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - leave/store.go: Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-dashboard/leave"
)

// Compile-time check that Store implements leave.Store
var _ leave.Store = (*Store)(nil)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		manager_id TEXT
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		team_id TEXT,
		site_id TEXT,
		avatar_url TEXT,
		annual_leave_entitlement TEXT NOT NULL DEFAULT '0',
		taken_leave TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_team
		ON profiles(team_id);

	CREATE TABLE IF NOT EXISTS bank_holidays (
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (date, name)
	);

	-- Leave requests. seq preserves insertion order for listing.
	CREATE TABLE IF NOT EXISTS leave_requests (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL REFERENCES profiles(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		rejection_reason TEXT,
		is_bank_holiday_work_request BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_date >= start_date),
		CHECK (status IN ('pending', 'approved', 'rejected'))
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_user
		ON leave_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS (profiles)
// =============================================================================

// SaveUser inserts or updates a user.
func (s *Store) SaveUser(ctx context.Context, u leave.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO profiles (id, full_name, role, team_id, site_id, avatar_url,
			annual_leave_entitlement, taken_leave, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			role = excluded.role,
			team_id = excluded.team_id,
			site_id = excluded.site_id,
			avatar_url = excluded.avatar_url,
			annual_leave_entitlement = excluded.annual_leave_entitlement,
			taken_leave = excluded.taken_leave
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Role, nullString(string(u.TeamID)), nullString(u.SiteID), nullString(u.Avatar),
		u.AnnualLeaveEntitlement.String(), u.TakenLeave.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const selectUsers = `
	SELECT id, full_name, role, team_id, site_id, avatar_url,
		annual_leave_entitlement, taken_leave
	FROM profiles
`

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id leave.UserID) (leave.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectUsers+" WHERE id = ?", id)
	if err != nil {
		return leave.User{}, err
	}
	users, err := scanUsers(rows)
	if err != nil {
		return leave.User{}, err
	}
	if len(users) == 0 {
		return leave.User{}, &leave.NotFoundError{Kind: "user", ID: string(id)}
	}
	return users[0], nil
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]leave.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectUsers+" ORDER BY rowid ASC")
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]leave.User, error) {
	defer rows.Close()

	var users []leave.User
	for rows.Next() {
		var (
			u                      leave.User
			role                   string
			teamID, siteID, avatar sql.NullString
			entitlement, taken     string
		)
		if err := rows.Scan(&u.ID, &u.Name, &role, &teamID, &siteID, &avatar, &entitlement, &taken); err != nil {
			return nil, err
		}
		r, err := leave.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
		u.Role = r
		u.TeamID = leave.TeamID(teamID.String)
		u.SiteID = siteID.String
		u.Avatar = avatar.String
		if u.AnnualLeaveEntitlement, err = decimal.NewFromString(entitlement); err != nil {
			return nil, fmt.Errorf("user %s: entitlement %q: %w", u.ID, entitlement, err)
		}
		if u.TakenLeave, err = decimal.NewFromString(taken); err != nil {
			return nil, fmt.Errorf("user %s: taken leave %q: %w", u.ID, taken, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// TEAMS
// =============================================================================

func (s *Store) SaveTeam(ctx context.Context, t leave.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, manager_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, manager_id = excluded.manager_id
	`, t.ID, t.Name, nullString(string(t.ManagerID)))
	return err
}

func (s *Store) ListTeams(ctx context.Context) ([]leave.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, manager_id FROM teams ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []leave.Team
	for rows.Next() {
		var t leave.Team
		var manager sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &manager); err != nil {
			return nil, err
		}
		t.ManagerID = leave.UserID(manager.String)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// =============================================================================
// BANK HOLIDAYS
// =============================================================================

func (s *Store) SaveBankHoliday(ctx context.Context, h leave.BankHoliday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bank_holidays (date, name) VALUES (?, ?) ON CONFLICT(date, name) DO NOTHING",
		h.Date.String(), h.Name,
	)
	return err
}

func (s *Store) ListBankHolidays(ctx context.Context) ([]leave.BankHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT date, name FROM bank_holidays ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []leave.BankHoliday
	for rows.Next() {
		var dateStr string
		var h leave.BankHoliday
		if err := rows.Scan(&dateStr, &h.Name); err != nil {
			return nil, err
		}
		d, err := leave.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		h.Date = d
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

const selectRequests = `
	SELECT id, user_id, start_date, end_date, type, status, notes,
		rejection_reason, is_bank_holiday_work_request, created_at
	FROM leave_requests
`

// CreateRequest inserts a new request.
func (s *Store) CreateRequest(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reason, _ := r.RejectionReason()
	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, user_id, start_date, end_date, type, status, notes,
			rejection_reason, is_bank_holiday_work_request, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.UserID, r.Period.Start.String(), r.Period.End.String(), r.Type, r.Status(),
		nullString(r.Notes), nullString(reason), r.IsBankHolidayWorkRequest, createdAt, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return leave.LeaveRequest{}, fmt.Errorf("request %s already exists: %w", r.ID, leave.ErrInvalidArgument)
		}
		if isForeignKeyError(err) {
			return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "user", ID: string(r.UserID)}
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to insert request: %w", err)
	}

	return s.getRequestLocked(ctx, r.ID)
}

// UpdateRequestStatus decides a pending request. The update only matches a
// row whose status is still pending.
func (s *Store) UpdateRequestStatus(ctx context.Context, id leave.RequestID, outcome leave.Outcome) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reason sql.NullString
	if rej, ok := outcome.(leave.Rejected); ok {
		reason = sql.NullString{String: rej.Reason, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`, outcome.Status(), reason, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	current, err := s.getRequestLocked(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if n == 0 {
		return leave.LeaveRequest{}, &leave.InvalidStateError{RequestID: id, Status: current.Status()}
	}
	return current, nil
}

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRequestLocked(ctx, id)
}

func (s *Store) getRequestLocked(ctx context.Context, id leave.RequestID) (leave.LeaveRequest, error) {
	requests, err := s.queryRequests(ctx, selectRequests+" WHERE id = ?", id)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if len(requests) == 0 {
		return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "request", ID: string(id)}
	}
	return requests[0], nil
}

// ListRequests returns all requests in insertion order.
func (s *Store) ListRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRequests(ctx, selectRequests+" ORDER BY seq ASC")
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var (
			r             leave.LeaveRequest
			start, end    string
			typ, status   string
			notes, reason sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &start, &end, &typ, &status, &notes,
			&reason, &r.IsBankHolidayWorkRequest, &createdAt); err != nil {
			return nil, err
		}

		startDate, err := leave.ParseDate(start)
		if err != nil {
			return nil, err
		}
		endDate, err := leave.ParseDate(end)
		if err != nil {
			return nil, err
		}
		r.Period = leave.DateRange{Start: startDate, End: endDate}

		if r.Type, err = leave.ParseLeaveType(typ); err != nil {
			return nil, err
		}
		if r.Outcome, err = leave.OutcomeFrom(leave.Status(status), reason.String); err != nil {
			return nil, err
		}
		r.Notes = notes.String
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("request %s: created_at %q: %w", r.ID, createdAt, err)
		}

		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// CountUsers is used to decide whether demo data should be seeded.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&n)
	return n, err
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"leave_requests", "bank_holidays", "profiles", "teams"}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
