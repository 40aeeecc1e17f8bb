package installs

import (
	"time"

	"gorm.io/datatypes"
)

type EventKind string

const (
	EventCreated          EventKind = "created"
	EventApproved         EventKind = "approved"
	EventRejected         EventKind = "rejected"
	EventInstallStarted   EventKind = "install_started"
	EventInstallCompleted EventKind = "install_completed"
	EventInstallFailed    EventKind = "install_failed"
	EventInstallTimedOut  EventKind = "install_timed_out"
)

// RequestEvent is an append-only audit row for a request.
type RequestEvent struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID   uint           `gorm:"column:request_id;not null;index" json:"request_id"`
	Kind        EventKind      `gorm:"column:kind;not null" json:"kind"`
	FromStatus  RequestStatus  `gorm:"column:from_status" json:"from_status,omitempty"`
	ToStatus    RequestStatus  `gorm:"column:to_status" json:"to_status,omitempty"`
	ExecutionID string         `gorm:"column:execution_id" json:"execution_id,omitempty"`
	Detail      datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

func (RequestEvent) TableName() string { return "request_events" }
