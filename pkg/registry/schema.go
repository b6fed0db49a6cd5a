// pkg/registry/schema.go
package registry

// SectionRegistry is the serialized form of the content-type registry.
type SectionRegistry struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Sections    []SectionType `json:"sections"`
}

// SectionType declares one content-type tag and the JSON schema its
// payloads must satisfy at write time.
type SectionType struct {
	ContentType string                 `json:"contentType"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"schema"`
}
