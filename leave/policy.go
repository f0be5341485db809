package leave

// =============================================================================
// ACCESS POLICY - Who may approve, who sees what
// =============================================================================

// CanApprove reports whether a role may approve or reject requests.
func CanApprove(role Role) bool {
	switch role {
	case RoleManager, RoleSiteManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanViewAnalytics reports whether a role may see team analytics.
func CanViewAnalytics(role Role) bool {
	return CanApprove(role)
}

// hasSiteWideVisibility is true for roles that see every team's requests.
func hasSiteWideVisibility(role Role) bool {
	return role == RoleSiteManager || role == RoleAdmin
}

// VisiblePendingApprovals returns the pending requests actor is shown for approval.
//
// Site managers and admins see every pending request except their own.
// Everyone else sees the pending requests of their own team, again
// excluding their own: nobody approves their own leave.
//
// The result keeps the order of requests.
func VisiblePendingApprovals(actor User, requests []LeaveRequest, users []User) []LeaveRequest {
	var visible []LeaveRequest

	if hasSiteWideVisibility(actor.Role) {
		for _, r := range requests {
			if r.IsPending() && r.UserID != actor.ID {
				visible = append(visible, r)
			}
		}
		return visible
	}

	// No team, no teammates.
	if actor.TeamID == "" {
		return nil
	}

	team := make(map[UserID]bool)
	for _, u := range TeamMembers(actor.TeamID, users) {
		team[u.ID] = true
	}

	for _, r := range requests {
		if r.IsPending() && team[r.UserID] && r.UserID != actor.ID {
			visible = append(visible, r)
		}
	}
	return visible
}

// CanDecide reports whether actor may decide req: the role must allow
// approvals and req must be among actor's visible pending approvals.
func CanDecide(actor User, req LeaveRequest, users []User) bool {
	if !CanApprove(actor.Role) {
		return false
	}
	for _, r := range VisiblePendingApprovals(actor, []LeaveRequest{req}, users) {
		if r.ID == req.ID {
			return true
		}
	}
	return false
}
