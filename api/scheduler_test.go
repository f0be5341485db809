package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-dashboard/leave"
	"github.com/warp/leave-dashboard/store/sqlite"
	"go.uber.org/zap/zaptest"
)

func newTestScheduler(t *testing.T, leadDays int) *ReminderScheduler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = SeedDemo(context.Background(), db, leave.DateOf(testNow))
	require.NoError(t, err)

	rs := NewReminderScheduler(db, zaptest.NewLogger(t).Sugar(), NewMetrics("test"))
	rs.Now = func() time.Time { return testNow }
	rs.LeadDays = leadDays
	return rs
}

func TestCheckAndRemind_DueRequest(t *testing.T) {
	// GIVEN: r1 is pending and starts in 5 days
	rs := newTestScheduler(t, 7)

	// WHEN
	reminders, err := rs.CheckAndRemind(context.Background())
	require.NoError(t, err)

	// THEN: the team manager and the site manager are both reminded
	require.Len(t, reminders, 2)
	assert.Equal(t, leave.UserID("u2"), reminders[0].Approver.ID)
	assert.Equal(t, leave.UserID("u4"), reminders[1].Approver.ID)
	for _, rem := range reminders {
		require.Len(t, rem.Requests, 1)
		assert.Equal(t, leave.RequestID("r1"), rem.Requests[0].ID)
	}
}

func TestCheckAndRemind_NothingDue(t *testing.T) {
	rs := newTestScheduler(t, 2)

	reminders, err := rs.CheckAndRemind(context.Background())

	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestScheduler_StartStop(t *testing.T) {
	rs := newTestScheduler(t, 7)
	rs.CheckInterval = time.Hour

	rs.Start()
	rs.Start() // second start is a no-op
	rs.Stop()
	rs.Stop()
}

func TestScheduler_Disabled(t *testing.T) {
	rs := newTestScheduler(t, 7)
	rs.Enabled = false

	rs.Start()
	rs.Stop()
}
