package installs

type RequestStatus string

const (
	StatusRequested RequestStatus = "Requested"
	StatusApproved  RequestStatus = "Approved"
	StatusRejected  RequestStatus = "Rejected"
	StatusCompleted RequestStatus = "Completed"
)

var transitions = map[RequestStatus][]RequestStatus{
	StatusRequested: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusCompleted},
}

func (s RequestStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusRejected, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is an edge of the request lifecycle.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
