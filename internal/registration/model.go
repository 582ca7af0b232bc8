package registration

import (
	"strings"
	"time"

	"maatram_portal_backend/internal/docstore"
	"maatram_portal_backend/internal/event"
)

// Status is the approval state of a registration.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// ParseStatus maps a stored status to a Status. Anything but "approved" is pending.
func ParseStatus(s string) Status {
	if Status(strings.ToLower(strings.TrimSpace(s))) == StatusApproved {
		return StatusApproved
	}
	return StatusPending
}

// StatusFor returns the initial status a registration for e gets.
func StatusFor(e *event.Event) Status {
	if e.AutoApprove {
		return StatusApproved
	}
	return StatusPending
}

// Registration is a registrations/{id} document. The student fields are a
// snapshot taken at registration time.
type Registration struct {
	ID             string     `firestore:"-" json:"id"`
	EventID        string     `firestore:"eventId" json:"eventId"`
	StudentUID     string     `firestore:"studentUid" json:"studentUid"`
	Status         Status     `firestore:"status" json:"status"`
	StudentName    string     `firestore:"studentName" json:"studentName"`
	StudentPhone   string     `firestore:"studentPhone" json:"studentPhone"`
	StudentCollege string     `firestore:"studentCollege" json:"studentCollege"`
	StudentYear    string     `firestore:"studentYear" json:"studentYear"`
	CreatedAt      time.Time  `firestore:"createdAt" json:"createdAt"`
	LastMessage    string     `firestore:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastNotifiedAt *time.Time `firestore:"lastNotifiedAt,omitempty" json:"lastNotifiedAt,omitempty"`
}

// FromDocument decodes a registrations document.
func FromDocument(doc docstore.Document) Registration {
	r := Registration{
		ID:             doc.ID,
		EventID:        doc.String("eventId"),
		StudentUID:     doc.String("studentUid"),
		Status:         ParseStatus(doc.String("status")),
		StudentName:    doc.String("studentName"),
		StudentPhone:   doc.String("studentPhone"),
		StudentCollege: doc.String("studentCollege"),
		StudentYear:    doc.String("studentYear"),
		CreatedAt:      doc.Time("createdAt"),
		LastMessage:    doc.String("lastMessage"),
	}
	if t := doc.Time("lastNotifiedAt"); !t.IsZero() {
		r.LastNotifiedAt = &t
	}
	return r
}

func (r *Registration) fields() map[string]interface{} {
	return map[string]interface{}{
		"eventId":        r.EventID,
		"studentUid":     r.StudentUID,
		"status":         string(r.Status),
		"studentName":    r.StudentName,
		"studentPhone":   r.StudentPhone,
		"studentCollege": r.StudentCollege,
		"studentYear":    r.StudentYear,
		"createdAt":      docstore.ServerTimestamp,
	}
}

// Participant is a registration as shown on the organizer's manage view.
type Participant struct {
	RegistrationID string `json:"registrationId"`
	StudentUID     string `json:"studentUid"`
	DisplayName    string `json:"displayName"`
	Phone          string `json:"phone"`
	Initials       string `json:"initials"`
	Status         Status `json:"status"`
}

// StudentEvent is an event with the caller's registration state.
type StudentEvent struct {
	event.Event
	Registered bool `json:"registered"`
}
