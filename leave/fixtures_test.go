package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-dashboard/leave"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func day(t *testing.T, s string) leave.Date {
	t.Helper()
	d, err := leave.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func span(t *testing.T, start, end string) leave.DateRange {
	t.Helper()
	return leave.DateRange{Start: day(t, start), End: day(t, end)}
}

func user(id leave.UserID, name string, role leave.Role, team leave.TeamID) leave.User {
	return leave.User{
		ID:                     id,
		Name:                   name,
		Role:                   role,
		TeamID:                 team,
		AnnualLeaveEntitlement: decimal.NewFromInt(25),
		TakenLeave:             decimal.Zero,
	}
}

func request(id leave.RequestID, userID leave.UserID, period leave.DateRange, typ leave.LeaveType, outcome leave.Outcome) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:        id,
		UserID:    userID,
		Period:    period,
		Type:      typ,
		Outcome:   outcome,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// engineering is a small team used across tests:
//
//	u1 Alice (employee, t1), u2 Bob (manager, t1), u3 Charlie (employee, t1),
//	u4 Diana (site manager, t2), u5 Eve (employee, t2)
func engineering() []leave.User {
	return []leave.User{
		user("u1", "Alice", leave.RoleEmployee, "t1"),
		user("u2", "Bob", leave.RoleManager, "t1"),
		user("u3", "Charlie", leave.RoleEmployee, "t1"),
		user("u4", "Diana", leave.RoleSiteManager, "t2"),
		user("u5", "Eve", leave.RoleEmployee, "t2"),
	}
}
