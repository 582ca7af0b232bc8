package broadcast

import (
	"time"

	"maatram_portal_backend/internal/docstore"
)

// Message is the messages/{id} audit record of one broadcast.
type Message struct {
	ID        string    `firestore:"-" json:"id"`
	EventID   string    `firestore:"eventId" json:"eventId"`
	Message   string    `firestore:"message" json:"message"`
	SenderUID string    `firestore:"senderUid" json:"senderUid"`
	SentAt    time.Time `firestore:"sentAt" json:"sentAt"`
}

// FromDocument decodes a messages document.
func FromDocument(doc docstore.Document) Message {
	return Message{
		ID:        doc.ID,
		EventID:   doc.String("eventId"),
		Message:   doc.String("message"),
		SenderUID: doc.String("senderUid"),
		SentAt:    doc.Time("sentAt"),
	}
}

// RowFailure is one registration that did not receive the message.
type RowFailure struct {
	RegistrationID string `json:"registrationId"`
	Error          string `json:"error"`
	Err            error  `json:"-"`
}

// BatchResult reports the outcome of a broadcast. Updated plus len(Failed)
// equals Attempted. MessageID is empty when the audit write failed.
type BatchResult struct {
	Attempted int          `json:"attempted"`
	Updated   int          `json:"updated"`
	Failed    []RowFailure `json:"failed"`
	MessageID string       `json:"messageId,omitempty"`
}
