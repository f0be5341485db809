/*
scheduler.go - Approval reminder scheduler

PURPOSE:
  Periodically scans pending requests and reminds approvers about the ones
  starting soon, so leave is not left undecided until it begins.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A request is due when it is pending and starts within LeadDays of today
    (requests that already started are included)
  - Approvers are the users allowed to decide the request under the access
    policy; each approver gets one reminder per scan listing their requests
  - Reminders are log lines; the pending gauge is refreshed on every scan

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - LeadDays: How far ahead to look (default: 7)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, log, metrics)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/leave-dashboard/leave"
	"go.uber.org/zap"
)

// Reminder is one approver's list of due requests.
type Reminder struct {
	Approver leave.User
	Requests []leave.LeaveRequest
}

// ReminderScheduler reminds approvers about pending requests that start soon.
type ReminderScheduler struct {
	Store         leave.Reader
	Log           *zap.SugaredLogger
	Metrics       *Metrics
	CheckInterval time.Duration
	LeadDays      int
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(store leave.Reader, log *zap.SugaredLogger, metrics *Metrics) *ReminderScheduler {
	return &ReminderScheduler{
		Store:         store,
		Log:           log,
		Metrics:       metrics,
		CheckInterval: time.Hour,
		LeadDays:      7,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Infow("reminder scheduler disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run()

	rs.Log.Infow("reminder scheduler started", "interval", rs.CheckInterval.String(), "lead_days", rs.LeadDays)
}

// Stop stops the scheduler and waits for an in-flight scan.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Log.Infow("reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.scan()

	for {
		select {
		case <-rs.ticker.C:
			rs.scan()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := rs.CheckAndRemind(ctx); err != nil {
		rs.Log.Warnw("reminder scan failed", "error", err)
	}
}

// CheckAndRemind runs one scan and returns the reminders it emitted.
func (rs *ReminderScheduler) CheckAndRemind(ctx context.Context) ([]Reminder, error) {
	s, err := leave.LoadSnapshot(ctx, rs.Store)
	if err != nil {
		return nil, err
	}
	today := leave.DateOf(rs.Now())
	horizon := today.AddDays(rs.LeadDays)

	pending := 0
	var due []leave.LeaveRequest
	for _, r := range s.Requests {
		if !r.IsPending() {
			continue
		}
		pending++
		if r.Period.Start.BeforeOrEqual(horizon) {
			due = append(due, r)
		}
	}
	if rs.Metrics != nil {
		rs.Metrics.SetPending(pending)
	}

	var reminders []Reminder
	for _, approver := range s.Users {
		if !leave.CanApprove(approver.Role) {
			continue
		}
		var mine []leave.LeaveRequest
		for _, r := range due {
			if leave.CanDecide(approver, r, s.Users) {
				mine = append(mine, r)
			}
		}
		if len(mine) == 0 {
			continue
		}
		reminders = append(reminders, Reminder{Approver: approver, Requests: mine})

		ids := make([]string, len(mine))
		for i, r := range mine {
			ids[i] = string(r.ID)
		}
		rs.Log.Infow("approval reminder",
			"approver_id", approver.ID,
			"approver", approver.Name,
			"due", len(mine),
			"request_ids", ids,
		)
	}

	if rs.Metrics != nil {
		rs.Metrics.RemindersSent(len(reminders))
	}
	return reminders, nil
}
