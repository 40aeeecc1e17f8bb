package services

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	VerbApprove = "approve"
	VerbInstall = "install"
	VerbReject  = "reject"
	VerbStatus  = "status"
)

const commandUsage = "Usage: approve <id> | install <id> | reject <id> | status <id>"

type SupervisorCommand struct {
	Verb string
	ID   uint
}

// ParseSupervisorCommand accepts exactly "<verb> <id>" where id is a positive
// integer. The verb is lowercased but not checked against known verbs.
func ParseSupervisorCommand(text string) (SupervisorCommand, error) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(parts) != 2 {
		return SupervisorCommand{}, fmt.Errorf("%w: %s", ErrInvalidCommand, commandUsage)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 || uint64(uint(id)) != id {
		return SupervisorCommand{}, fmt.Errorf("%w: %s", ErrInvalidCommand, commandUsage)
	}
	return SupervisorCommand{Verb: parts[0], ID: uint(id)}, nil
}
