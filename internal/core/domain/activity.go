package domain

import "time"

// ActivityRecord is an immutable audit-trail entry for a mutating action.
// Records are appended after the primary effect succeeded and are never
// updated or deleted.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}
