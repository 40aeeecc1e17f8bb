package domain

import "github.com/yungbote/installdesk-backend/internal/domain/installs"

type InstallRequest = installs.InstallRequest
type RequestEvent = installs.RequestEvent
type RequestStatus = installs.RequestStatus
type EventKind = installs.EventKind

const (
	StatusRequested = installs.StatusRequested
	StatusApproved  = installs.StatusApproved
	StatusRejected  = installs.StatusRejected
	StatusCompleted = installs.StatusCompleted

	EventCreated          = installs.EventCreated
	EventApproved         = installs.EventApproved
	EventRejected         = installs.EventRejected
	EventInstallStarted   = installs.EventInstallStarted
	EventInstallCompleted = installs.EventInstallCompleted
	EventInstallFailed    = installs.EventInstallFailed
	EventInstallTimedOut  = installs.EventInstallTimedOut
)

func CanTransition(from, to RequestStatus) bool { return installs.CanTransition(from, to) }
