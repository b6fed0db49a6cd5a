// internal/availability/transitions.go
package availability

import "rotationhub/internal/models"

// transitionTable is the closed set of legal status transitions. Accepted
// and rejected are terminal and have no outgoing edges.
var transitionTable = map[models.ApplicationStatus]map[models.ApplicationStatus]bool{
	models.StatusPending: {
		models.StatusAccepted:   true,
		models.StatusRejected:   true,
		models.StatusWaitlisted: true,
	},
	models.StatusWaitlisted: {
		models.StatusAccepted: true,
		models.StatusRejected: true,
	},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to models.ApplicationStatus) bool {
	return transitionTable[from][to]
}

// ReleasesSeat reports whether the transition frees reserved capacity.
// Seats are reserved at claim time, so only entering the rejected state
// gives one back; waitlisted -> accepted is seat-neutral.
func ReleasesSeat(from, to models.ApplicationStatus) bool {
	return to == models.StatusRejected && from.HoldsSeat()
}
