// Package session decides, for every change of session state, which page the
// client belongs on and repairs missing profiles along the way.
package session

import (
	"fmt"
	"strings"

	"maatram_portal_backend/internal/profile"
)

// Page is a client entry page.
type Page string

const (
	PageLanding   Page = "landing"
	PageStudent   Page = "student"
	PageOrganizer Page = "organizer"
)

// ParsePage validates a page name sent by the client.
func ParsePage(s string) (Page, error) {
	switch p := Page(strings.ToLower(strings.TrimSpace(s))); p {
	case PageLanding, PageStudent, PageOrganizer:
		return p, nil
	default:
		return "", fmt.Errorf("unknown page %q", s)
	}
}

// allows reports whether role may stay on a role-specific page. Superadmins
// may view every dashboard.
func (p Page) allows(role profile.Role) bool {
	switch p {
	case PageStudent:
		return role == profile.RoleStudent || role == profile.RoleSuperadmin
	case PageOrganizer:
		return role == profile.RoleOrganizer || role == profile.RoleSuperadmin
	default:
		return true
	}
}

func (p Page) portalName() string {
	if p == PageOrganizer {
		return "Organizer"
	}
	return "Student"
}

// State is the outcome of one routing cycle.
type State string

const (
	StateUnauthenticated     State = "unauthenticated"
	StateNoProfile           State = "authenticated_no_profile"
	StateProfileRepairFailed State = "authenticated_profile_repair_failed"
	StateRoleMismatch        State = "authenticated_role_mismatch"
	StateRouted              State = "authenticated_routed"
)

const (
	NoticeAnchorComingSoon = "Anchor dashboard coming soon!"
	NoticeAdminComingSoon  = "Admin dashboard coming soon!"
	NoticeRepairFailed     = "Your profile couldn't be created automatically. Contact support."
	NoticeAuthError        = "Authentication error. Try again."
)

// Decision is what the client must do after a session change. An empty
// Redirect means stay on Page.
type Decision struct {
	State       State                `json:"state"`
	Page        Page                 `json:"page"`
	Role        profile.Role         `json:"role,omitempty"`
	Redirect    Page                 `json:"redirect,omitempty"`
	ShowAuth    bool                 `json:"showAuth,omitempty"`
	SignedOut   bool                 `json:"signedOut,omitempty"`
	Repaired    bool                 `json:"repaired,omitempty"`
	Notice      string               `json:"notice,omitempty"`
	Fatal       bool                 `json:"fatal,omitempty"`
	PageSession string               `json:"pageSession,omitempty"`
	Profile     *profile.UserProfile `json:"profile,omitempty"`
}

// Halted reports whether the client must stop on a disabled page.
func (d Decision) Halted() bool {
	return d.State == StateRoleMismatch || d.Fatal
}

// Destination is the page the client ends up on.
func (d Decision) Destination() Page {
	if d.Redirect != "" {
		return d.Redirect
	}
	return d.Page
}
