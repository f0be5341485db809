package leave

import "fmt"

// =============================================================================
// CONFLICT DETECTOR - Overlapping approved leave within a team
// =============================================================================

// Conflict is one approved request of a teammate that overlaps a candidate range.
type Conflict struct {
	RequestID RequestID
	UserID    UserID
	UserName  string
	Period    DateRange
}

// Description is the warning shown next to the request form.
func (c Conflict) Description() string {
	return fmt.Sprintf("%s is off during this period.", c.UserName)
}

// FindConflicts returns the approved requests of teamMembers (other than
// excludeUserID) whose period overlaps candidate under closed-interval
// semantics. The result is advisory: it never blocks a submission.
//
// Runs in O(len(teamMembers) + len(requests)) so it can be called on every
// edit of the date range.
func FindConflicts(candidate DateRange, excludeUserID UserID, teamMembers []User, requests []LeaveRequest) []Conflict {
	names := make(map[UserID]string, len(teamMembers))
	for _, u := range teamMembers {
		if u.ID != excludeUserID {
			names[u.ID] = u.Name
		}
	}

	var conflicts []Conflict
	for _, r := range requests {
		if !r.IsApproved() {
			continue
		}
		name, ok := names[r.UserID]
		if !ok {
			continue
		}
		if candidate.Overlaps(r.Period) {
			conflicts = append(conflicts, Conflict{
				RequestID: r.ID,
				UserID:    r.UserID,
				UserName:  name,
				Period:    r.Period,
			})
		}
	}
	return conflicts
}

// Descriptions flattens conflicts to their warning strings.
func Descriptions(conflicts []Conflict) []string {
	out := make([]string, len(conflicts))
	for i, c := range conflicts {
		out[i] = c.Description()
	}
	return out
}

// ConflictsFor checks userID's candidate range against the user's own team.
// An unknown user has no team and therefore no conflicts.
func (s *Snapshot) ConflictsFor(userID UserID, candidate DateRange) []Conflict {
	u, ok := s.User(userID)
	if !ok || u.TeamID == "" {
		return nil
	}
	return FindConflicts(candidate, u.ID, s.TeamMembers(u.TeamID), s.Requests)
}

// ConflictsForRequest is the approver's view of a pending request: which
// teammates are already off during it.
func (s *Snapshot) ConflictsForRequest(req LeaveRequest) []Conflict {
	return s.ConflictsFor(req.UserID, req.Period)
}
