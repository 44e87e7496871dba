// Package queue defines message payloads exchanged over the message broker,
// the publisher used by the authentication service, and the background
// consumer that turns published events into the audit log.
package queue

// Event types published to the auth.events queue.
const (
	EventUserRegistered  = "user.registered"
	EventPasswordChanged = "password.changed"
)

// Event is published when an account is created or its credentials change.
// It carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.  No secret
// material (passwords, hashes, stamps) ever appears in an event.
type Event struct {
	Type       string `json:"type"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Admin      bool   `json:"admin,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
