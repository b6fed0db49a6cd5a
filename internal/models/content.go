// internal/models/content.go
package models

import "encoding/json"

// SectionType is the content-type tag of a page section. Each tag has a JSON
// schema registered in pkg/registry; payloads are validated against it at
// write time.
type SectionType string

const (
	SectionImage    SectionType = "image"
	SectionRichText SectionType = "richText"
	SectionList     SectionType = "list"
)

// Section is one typed block of a page. Position is the authoritative render
// order within the page.
type Section struct {
	ID          string          `json:"id"`
	PageID      string          `json:"pageId"`
	Name        string          `json:"name"`
	ContentType SectionType     `json:"contentType"`
	Position    int             `json:"position"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// Page is an ordered collection of sections resolved for rendering.
type Page struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}
