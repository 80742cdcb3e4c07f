package domain

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusAccepted  AssignmentStatus = "accepted"
	StatusDeclined  AssignmentStatus = "declined"
	StatusExpired   AssignmentStatus = "expired"
	StatusCancelled AssignmentStatus = "cancelled"
)

// validTransitions is the closed transition table for assignment statuses.
// Every assignment starts pending; all terminal states are final.
var validTransitions = map[AssignmentStatus]map[AssignmentStatus]bool{
	StatusPending: {
		StatusAccepted:  true,
		StatusDeclined:  true,
		StatusExpired:   true,
		StatusCancelled: true,
	},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to AssignmentStatus) bool {
	return validTransitions[from][to]
}

// IsTerminal reports whether the status permits no further transitions.
func (s AssignmentStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsValidStatus reports whether the value is a known assignment status.
func IsValidStatus(s AssignmentStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled:
		return true
	}
	return false
}
