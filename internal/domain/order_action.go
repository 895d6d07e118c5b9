package domain

import "time"

// OutcomeSuccess marks an audited action the backend accepted. Failed
// actions record the error code instead.
const OutcomeSuccess = "SUCCESS"

// OrderAction is one action a user performed on an order through the
// gateway, kept as an audit trail.
type OrderAction struct {
	ID         uint64    `json:"id"`
	OrderID    string    `json:"orderId"`
	Action     string    `json:"action"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus,omitempty"`
	ActorID    string    `json:"actorId"`
	ActorRole  Role      `json:"actorRole"`
	Reason     string    `json:"reason,omitempty"`
	Outcome    string    `json:"outcome"`
	TraceID    string    `json:"traceId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a OrderAction) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}
