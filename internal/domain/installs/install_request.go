package installs

import "time"

// InstallRequest is one software-installation request. Identity, requester,
// package and ticket fields are fixed at creation; Status only moves forward.
type InstallRequest struct {
	ID           uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string        `gorm:"column:user_id;not null;index" json:"user_id"`
	Software     string        `gorm:"column:software;not null" json:"software"`
	Version      string        `gorm:"column:version;not null" json:"version"`
	TicketID     string        `gorm:"column:ticket_id;not null" json:"ticket_id"`
	TicketNumber string        `gorm:"column:ticket_number;not null" json:"ticket_number"`
	Status       RequestStatus `gorm:"column:status;not null;index" json:"status"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (InstallRequest) TableName() string { return "requests" }
