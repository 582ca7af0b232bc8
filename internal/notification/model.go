package notification

import (
	"time"

	"maatram_portal_backend/internal/profile"
)

// Kind says what a badge count counts.
type Kind string

const (
	KindApprovedRegistrations Kind = "approved_registrations"
	KindPendingApprovals      Kind = "pending_approvals"
	KindNone                  Kind = "none"
)

// Summary is the notification badge of a dashboard.
type Summary struct {
	Role  profile.Role `json:"role"`
	Kind  Kind         `json:"kind"`
	Count int          `json:"count"`
}

// InboxItem is one organizer message a student received on a registration.
type InboxItem struct {
	RegistrationID string     `json:"registrationId"`
	EventID        string     `json:"eventId"`
	EventTitle     string     `json:"eventTitle,omitempty"`
	Message        string     `json:"message"`
	NotifiedAt     *time.Time `json:"notifiedAt,omitempty"`
}
