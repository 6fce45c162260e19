// Package queue defines message payloads exchanged over the message broker.
package queue

// QueueName is the durable queue every domain event is published to.
const QueueName = "messestand.events"

// Event types.
const (
	EventUserRegistered = "user.registered"
	EventProjectCreated = "project.created"
	EventProjectUpdated = "project.updated"
	EventProjectDeleted = "project.deleted"
)

// ProjectEvent is published after a successful write.  It carries enough
// for the event log to be readable without querying the database.
type ProjectEvent struct {
	Type        string  `json:"type"`
	UserID      uint64  `json:"user_id"`
	Username    string  `json:"username,omitempty"`
	ProjectID   uint64  `json:"project_id,omitempty"`
	Projektname string  `json:"projektname,omitempty"`
	Gesamt      float64 `json:"gesamt,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}
