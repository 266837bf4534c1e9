// Package queue defines message payloads exchanged over the message
// broker and the background consumer that persists them.
package queue

// AuditQueueName is the durable queue audit events are published to.
const AuditQueueName = "audit.events"

// AuditEvent records one state-changing operation for the audit trail:
// who did it, what was done, and to which entity.  Events carry enough
// detail for downstream consumers to log or analyze without querying
// the primary database.
type AuditEvent struct {
	EventID    string            `json:"event_id"`
	CompanyID  uint64            `json:"company_id"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	TargetType string            `json:"target_type"`
	TargetID   string            `json:"target_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt string            `json:"occurred_at"`
}
