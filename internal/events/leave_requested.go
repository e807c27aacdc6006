package events

import "time"

const LeaveRequestedTopic = "hr.leave.request.v1"

// LeaveRequestedEvent is published when a leave request is admitted. The
// notification consumer materializes it into a notification row for the
// requester.
type LeaveRequestedEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	LeaveID       string    `json:"leave_id"`
	UserID        string    `json:"user_id"`
	LeaveTypeCode string    `json:"leave_type_code"`
	FromDate      string    `json:"from_date"`
	ToDate        string    `json:"to_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}
