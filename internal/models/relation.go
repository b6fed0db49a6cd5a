// internal/models/relation.go
package models

// Favorite is a pure membership relation: one row per (applicant, program)
// pair, no lifecycle beyond create/delete. Listings carry a program summary
// so clients render favorites without a lookup per row.
type Favorite struct {
	ApplicantID string          `json:"applicantId"`
	ProgramID   string          `json:"programId"`
	CreatedAt   string          `json:"createdAt"`
	Program     *ProgramSummary `json:"program,omitempty"`
}

// ProgramSummary is the slice of a program embedded in relation listings.
type ProgramSummary struct {
	Title          string      `json:"title"`
	Type           ProgramType `json:"type"`
	Specialty      string      `json:"specialty"`
	Hospital       string      `json:"hospital"`
	City           string      `json:"city"`
	Country        string      `json:"country"`
	AvailableSeats int         `json:"availableSeats"`
	FeeCents       int64       `json:"feeCents"`
	IsActive       bool        `json:"isActive"`
}

// Review is an author's single review of a program. A second write for the
// same (author, program) pair replaces the row.
type Review struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	ProgramID string `json:"programId"`
	Rating    int    `json:"rating"` // 1..5
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
