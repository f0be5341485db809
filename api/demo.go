/*
demo.go - Demo data for local runs and tests

PURPOSE:
  Populates an empty store with a small, realistic organisation so the
  dashboard has something to show: two teams, four users, three requests
  and three bank holidays. Request dates are relative to "today" so the
  dashboard always has upcoming leave and a recent sickness.

DATA:
  Teams:     t1 Engineering (manager u2), t2 Sales (manager u5, not seeded)
  Users:     u1 Alice Johnson   employee      t1  25 / 12 days
             u2 Bob Smith       manager       t1  28 /  5 days
             u3 Charlie Davis   employee      t1  25 / 20 days
             u4 Diana Prince    site manager  t2  30 / 15 days
  Requests:  r1 u1 annual  pending   today+5 .. today+7   "Long weekend trip"
             r2 u3 sick    approved  today-2 .. today     "Flu"
             r3 u1 lieu    approved  today+14             bank holiday work
  Holidays:  Christmas Day, Boxing Day (this year), New Year's Day (next year)

USAGE:
  seeded, err := api.SeedDemo(ctx, store, leave.Today())

NOTE:
  ResetDemo clears the store first. Only use in development/demo environments.
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-dashboard/leave"
)

// Seeder is a store that can be cleared and loaded with reference data.
// store/sqlite.Store implements it.
type Seeder interface {
	leave.Writer
	SaveUser(ctx context.Context, u leave.User) error
	SaveTeam(ctx context.Context, t leave.Team) error
	SaveBankHoliday(ctx context.Context, h leave.BankHoliday) error
	CountUsers(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// DemoData is the demo organisation as of today.
type DemoData struct {
	Teams    []leave.Team
	Users    []leave.User
	Holidays []leave.BankHoliday
	Requests []leave.LeaveRequest
}

// NewDemoData builds the demo organisation relative to today.
func NewDemoData(today leave.Date) DemoData {
	days := decimal.NewFromInt
	avatar := func(n int) string {
		return fmt.Sprintf("https://picsum.photos/id/%d/150/150", n)
	}
	at := func(from, to int) leave.DateRange {
		return leave.DateRange{Start: today.AddDays(from), End: today.AddDays(to)}
	}
	created := today.Time().Add(9 * time.Hour)

	return DemoData{
		Teams: []leave.Team{
			{ID: "t1", Name: "Engineering", ManagerID: "u2"},
			{ID: "t2", Name: "Sales", ManagerID: "u5"},
		},
		Users: []leave.User{
			{ID: "u1", Name: "Alice Johnson", Role: leave.RoleEmployee, TeamID: "t1", SiteID: "s1", Avatar: avatar(101),
				AnnualLeaveEntitlement: days(25), TakenLeave: days(12)},
			{ID: "u2", Name: "Bob Smith", Role: leave.RoleManager, TeamID: "t1", SiteID: "s1", Avatar: avatar(102),
				AnnualLeaveEntitlement: days(28), TakenLeave: days(5)},
			{ID: "u3", Name: "Charlie Davis", Role: leave.RoleEmployee, TeamID: "t1", SiteID: "s1", Avatar: avatar(103),
				AnnualLeaveEntitlement: days(25), TakenLeave: days(20)},
			{ID: "u4", Name: "Diana Prince", Role: leave.RoleSiteManager, TeamID: "t2", SiteID: "s1", Avatar: avatar(104),
				AnnualLeaveEntitlement: days(30), TakenLeave: days(15)},
		},
		Holidays: []leave.BankHoliday{
			{Date: leave.NewDate(today.Year(), time.December, 25), Name: "Christmas Day"},
			{Date: leave.NewDate(today.Year(), time.December, 26), Name: "Boxing Day"},
			{Date: leave.NewDate(today.Year()+1, time.January, 1), Name: "New Year's Day"},
		},
		Requests: []leave.LeaveRequest{
			{ID: "r1", UserID: "u1", Period: at(5, 7), Type: leave.LeaveAnnual, Outcome: leave.Pending{},
				Notes: "Long weekend trip", CreatedAt: created},
			{ID: "r2", UserID: "u3", Period: at(-2, 0), Type: leave.LeaveSick, Outcome: leave.Approved{},
				Notes: "Flu", CreatedAt: created},
			{ID: "r3", UserID: "u1", Period: at(14, 14), Type: leave.LeaveLieu, Outcome: leave.Approved{},
				IsBankHolidayWorkRequest: true, CreatedAt: created},
		},
	}
}

// SeedDemo loads the demo data if the store has no users. It reports
// whether anything was written.
func SeedDemo(ctx context.Context, s Seeder, today leave.Date) (bool, error) {
	n, err := s.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := loadDemo(ctx, s, NewDemoData(today)); err != nil {
		return false, err
	}
	return true, nil
}

// ResetDemo clears the store and loads the demo data.
func ResetDemo(ctx context.Context, s Seeder, today leave.Date) error {
	if err := s.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return loadDemo(ctx, s, NewDemoData(today))
}

func loadDemo(ctx context.Context, s Seeder, d DemoData) error {
	for _, t := range d.Teams {
		if err := s.SaveTeam(ctx, t); err != nil {
			return fmt.Errorf("save team %s: %w", t.ID, err)
		}
	}
	for _, u := range d.Users {
		if err := s.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("save user %s: %w", u.ID, err)
		}
	}
	for _, h := range d.Holidays {
		if err := s.SaveBankHoliday(ctx, h); err != nil {
			return fmt.Errorf("save holiday %s: %w", h.Name, err)
		}
	}
	for _, r := range d.Requests {
		if _, err := s.CreateRequest(ctx, r); err != nil {
			return fmt.Errorf("create request %s: %w", r.ID, err)
		}
	}
	return nil
}
