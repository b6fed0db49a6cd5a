// internal/models/application.go
package models

// ApplicationStatus is the closed set of application states.
type ApplicationStatus string

const (
	StatusPending    ApplicationStatus = "pending"
	StatusAccepted   ApplicationStatus = "accepted"
	StatusRejected   ApplicationStatus = "rejected"
	StatusWaitlisted ApplicationStatus = "waitlisted"
)

// IsTerminal reports whether no further transition is legal from s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// HoldsSeat reports whether the status represents reserved capacity.
// Seats are reserved at claim time, so every status except rejected holds
// one seat.
func (s ApplicationStatus) HoldsSeat() bool {
	return s == StatusPending || s == StatusWaitlisted || s == StatusAccepted
}

// Application is a learner's claim against a program's seat capacity.
type Application struct {
	ID              string            `json:"id"`
	ProgramID       string            `json:"programId"`
	ApplicantID     string            `json:"applicantId"`
	Status          ApplicationStatus `json:"status"`
	CreatedAt       string            `json:"createdAt"`       // ISO 8601
	StatusChangedAt string            `json:"statusChangedAt"` // ISO 8601
}
