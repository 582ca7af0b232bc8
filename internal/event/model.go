package event

import (
	"strings"
	"time"

	"maatram_portal_backend/internal/docstore"
)

// Event is an events/{id} document.
type Event struct {
	ID            string    `firestore:"-" json:"id"`
	Title         string    `firestore:"title" json:"title"`
	Slug          string    `firestore:"slug" json:"slug"`
	Date          string    `firestore:"date" json:"date"`
	Time          string    `firestore:"time" json:"time"`
	Location      string    `firestore:"location" json:"location"`
	Description   string    `firestore:"description" json:"description"`
	Limit         int       `firestore:"limit" json:"limit"`
	AutoApprove   bool      `firestore:"autoApprove" json:"autoApprove"`
	OrganizerUID  string    `firestore:"organizerUid" json:"organizerUid"`
	OrganizerName string    `firestore:"organizerName" json:"organizerName"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
}

// CreateEventRequest is the organizer's create form.
type CreateEventRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location" binding:"max=300"`
	Description string `json:"description" binding:"max=5000"`
	Limit       int    `json:"limit" binding:"gte=0"`
	AutoApprove bool   `json:"autoApprove"`
}

// FromDocument decodes an events document. An empty title reads as "Untitled".
func FromDocument(doc docstore.Document) Event {
	e := Event{
		ID:            doc.ID,
		Title:         doc.String("title"),
		Slug:          doc.String("slug"),
		Date:          doc.String("date"),
		Time:          doc.String("time"),
		Location:      doc.String("location"),
		Description:   doc.String("description"),
		Limit:         doc.Int("limit"),
		AutoApprove:   doc.Bool("autoApprove"),
		OrganizerUID:  doc.String("organizerUid"),
		OrganizerName: doc.String("organizerName"),
		CreatedAt:     doc.Time("createdAt"),
	}
	if strings.TrimSpace(e.Title) == "" {
		e.Title = "Untitled"
	}
	return e
}

func (e *Event) fields() map[string]interface{} {
	return map[string]interface{}{
		"title":         e.Title,
		"slug":          e.Slug,
		"date":          e.Date,
		"time":          e.Time,
		"location":      e.Location,
		"description":   e.Description,
		"limit":         e.Limit,
		"autoApprove":   e.AutoApprove,
		"organizerUid":  e.OrganizerUID,
		"organizerName": e.OrganizerName,
		"createdAt":     docstore.ServerTimestamp,
	}
}

// searchDocument is the Elasticsearch representation of an event.
func (e *Event) searchDocument() map[string]interface{} {
	doc := map[string]interface{}{
		"title":          e.Title,
		"slug":           e.Slug,
		"description":    e.Description,
		"location":       e.Location,
		"date":           e.Date,
		"time":           e.Time,
		"limit":          e.Limit,
		"auto_approve":   e.AutoApprove,
		"organizer_uid":  e.OrganizerUID,
		"organizer_name": e.OrganizerName,
	}
	if !e.CreatedAt.IsZero() {
		doc["created_at"] = e.CreatedAt
	}
	return doc
}
