// internal/models/program.go
package models

// ProgramType is the closed set of rotation offerings.
type ProgramType string

const (
	ProgramObservership ProgramType = "observership"
	ProgramHandsOn      ProgramType = "hands_on"
	ProgramFellowship   ProgramType = "fellowship"
	ProgramClerkship    ProgramType = "clerkship"
)

// ValidProgramTypes enumerates every accepted program type tag.
var ValidProgramTypes = map[ProgramType]bool{
	ProgramObservership: true,
	ProgramHandsOn:      true,
	ProgramFellowship:   true,
	ProgramClerkship:    true,
}

// Program is a published clinical-rotation offering with finite seat
// capacity. AvailableSeats is owned exclusively by the availability engine;
// 0 <= AvailableSeats <= TotalSeats at all times.
type Program struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Type             ProgramType `json:"type"`
	Specialty        string      `json:"specialty"`
	Hospital         string      `json:"hospital"`
	Mentor           string      `json:"mentor"`
	City             string      `json:"city"`
	Country          string      `json:"country"`
	DurationWeeks    int         `json:"durationWeeks"`
	StartDate        string      `json:"startDate"` // ISO 8601 date
	TotalSeats       int         `json:"totalSeats"`
	AvailableSeats   int         `json:"availableSeats"`
	FeeCents         int64       `json:"feeCents"` // 0 means free
	IsActive         bool        `json:"isActive"`
	CreatedAt        string      `json:"createdAt"`
	UpdatedAt        string      `json:"updatedAt"`
	ApplicationCount int         `json:"applicationCount"`
	ViewCount        int         `json:"viewCount"`
}

// IsFree reports whether the program charges no fee.
func (p *Program) IsFree() bool {
	return p.FeeCents == 0
}
