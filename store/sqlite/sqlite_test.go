package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-dashboard/leave"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(t *testing.T, s string) leave.Date {
	t.Helper()
	d, err := leave.ParseDate(s)
	require.NoError(t, err)
	return d
}

func seedUser(t *testing.T, store *Store, id leave.UserID, role leave.Role, team leave.TeamID) leave.User {
	t.Helper()
	u := leave.User{
		ID:                     id,
		Name:                   "User " + string(id),
		Role:                   role,
		TeamID:                 team,
		AnnualLeaveEntitlement: decimal.NewFromInt(25),
		TakenLeave:             decimal.RequireFromString("2.5"),
	}
	require.NoError(t, store.SaveUser(context.Background(), u))
	return u
}

func pendingRequest(t *testing.T, id leave.RequestID, user leave.UserID, start, end string) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:        id,
		UserID:    user,
		Period:    leave.DateRange{Start: date(t, start), End: date(t, end)},
		Type:      leave.LeaveAnnual,
		Outcome:   leave.Pending{},
		Notes:     "trip",
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestUsers_RoundTripKeepsDecimalsAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: two users saved in order
	seedUser(t, store, "u2", leave.RoleManager, "t1")
	seedUser(t, store, "u1", leave.RoleEmployee, "t1")

	// WHEN: listing
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)

	// THEN: insertion order and exact day amounts survive
	require.Len(t, users, 2)
	assert.Equal(t, leave.UserID("u2"), users[0].ID)
	assert.Equal(t, leave.UserID("u1"), users[1].ID)
	assert.True(t, users[1].TakenLeave.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, leave.TeamID("t1"), users[1].TeamID)

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetUser_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUser(context.Background(), "ghost")

	var nf *leave.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Kind)
	assert.True(t, errors.Is(err, leave.ErrNotFound))
}

func TestTeamsAndHolidays(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveTeam(ctx, leave.Team{ID: "t1", Name: "Engineering", ManagerID: "u2"}))
	require.NoError(t, store.SaveBankHoliday(ctx, leave.BankHoliday{Date: date(t, "2024-12-26"), Name: "Boxing Day"}))
	require.NoError(t, store.SaveBankHoliday(ctx, leave.BankHoliday{Date: date(t, "2024-12-25"), Name: "Christmas Day"}))
	// duplicate holiday is ignored
	require.NoError(t, store.SaveBankHoliday(ctx, leave.BankHoliday{Date: date(t, "2024-12-25"), Name: "Christmas Day"}))

	teams, err := store.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, leave.UserID("u2"), teams[0].ManagerID)

	holidays, err := store.ListBankHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "Christmas Day", holidays[0].Name)
}

func TestCreateRequest_ListsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedUser(t, store, "u1", leave.RoleEmployee, "t1")

	// GIVEN: two requests, the later-dated one created first
	_, err := store.CreateRequest(ctx, pendingRequest(t, "r-b", "u1", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)
	created, err := store.CreateRequest(ctx, pendingRequest(t, "r-a", "u1", "2024-07-01", "2024-07-01"))
	require.NoError(t, err)

	// THEN: the created record is returned as stored
	assert.Equal(t, leave.StatusPending, created.Status())
	assert.Equal(t, "trip", created.Notes)
	assert.Equal(t, 1, created.Period.Days())

	// AND: listing keeps insertion order, not date order
	list, err := store.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, leave.RequestID("r-b"), list[0].ID)
	assert.Equal(t, leave.RequestID("r-a"), list[1].ID)
}

func TestCreateRequest_Rejections(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedUser(t, store, "u1", leave.RoleEmployee, "t1")

	_, err := store.CreateRequest(ctx, pendingRequest(t, "r1", "u1", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)

	t.Run("duplicate id", func(t *testing.T) {
		_, err := store.CreateRequest(ctx, pendingRequest(t, "r1", "u1", "2024-09-01", "2024-09-02"))
		assert.ErrorIs(t, err, leave.ErrInvalidArgument)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.CreateRequest(ctx, pendingRequest(t, "r2", "ghost", "2024-09-01", "2024-09-02"))
		assert.ErrorIs(t, err, leave.ErrNotFound)
	})
}

func TestUpdateRequestStatus_OnlyFromPending(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedUser(t, store, "u1", leave.RoleEmployee, "t1")
	_, err := store.CreateRequest(ctx, pendingRequest(t, "r1", "u1", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)

	// WHEN: rejecting with a reason
	updated, err := store.UpdateRequestStatus(ctx, "r1", leave.Rejected{Reason: "coverage"})
	require.NoError(t, err)

	// THEN: status and reason are stored together
	assert.Equal(t, leave.StatusRejected, updated.Status())
	reason, ok := updated.RejectionReason()
	assert.True(t, ok)
	assert.Equal(t, "coverage", reason)

	// WHEN: deciding again
	_, err = store.UpdateRequestStatus(ctx, "r1", leave.Approved{})

	// THEN: invalid state, record unchanged
	var ise *leave.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, leave.StatusRejected, ise.Status)

	got, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, got.Status())
}

func TestUpdateRequestStatus_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateRequestStatus(context.Background(), "missing", leave.Approved{})

	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedUser(t, store, "u1", leave.RoleEmployee, "t1")
	_, err := store.CreateRequest(ctx, pendingRequest(t, "r1", "u1", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	list, err := store.ListRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCorruptRows_AreReportedNotZeroed(t *testing.T) {
	ctx := context.Background()

	t.Run("entitlement", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "u1", leave.RoleEmployee, "t1")

		// GIVEN: an entitlement that is not a number
		_, err := store.db.ExecContext(ctx,
			`UPDATE profiles SET annual_leave_entitlement = 'twenty' WHERE id = 'u1'`)
		require.NoError(t, err)

		// WHEN
		_, err = store.GetUser(ctx, "u1")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "twenty")
		_, err = store.ListUsers(ctx)
		assert.Error(t, err)
	})

	t.Run("taken leave", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "u1", leave.RoleEmployee, "t1")
		_, err := store.db.ExecContext(ctx, `UPDATE profiles SET taken_leave = '' WHERE id = 'u1'`)
		require.NoError(t, err)

		_, err = store.GetUser(ctx, "u1")
		assert.Error(t, err)
	})

	t.Run("created_at", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "u1", leave.RoleEmployee, "t1")
		_, err := store.CreateRequest(ctx, pendingRequest(t, "r1", "u1", "2024-08-01", "2024-08-02"))
		require.NoError(t, err)
		_, err = store.db.ExecContext(ctx, `UPDATE leave_requests SET created_at = 'yesterday' WHERE id = 'r1'`)
		require.NoError(t, err)

		_, err = store.GetRequest(ctx, "r1")
		assert.Error(t, err)
		_, err = store.ListRequests(ctx)
		assert.Error(t, err)
	})
}
