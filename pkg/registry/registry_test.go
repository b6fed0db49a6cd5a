// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryKnownTypes(t *testing.T) {
	reg := Default()

	assert.True(t, reg.Known("image"))
	assert.True(t, reg.Known("richText"))
	assert.True(t, reg.Known("list"))
	assert.False(t, reg.Known("video"))
}

func TestValidateImagePayload(t *testing.T) {
	reg := Default()

	tests := []struct {
		name    string
		payload string
		valid   bool
	}{
		{"valid with url only", `{"url":"https://cdn.example.com/a.png"}`, true},
		{"valid with alt and caption", `{"url":"https://cdn.example.com/a.png","alt":"ward","caption":"the ward"}`, true},
		{"missing url", `{"alt":"ward"}`, false},
		{"empty url", `{"url":""}`, false},
		{"unknown field", `{"url":"x","size":12}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := reg.Validate("image", []byte(tt.payload))
			require.NoError(t, err)
			if tt.valid {
				assert.Empty(t, msgs)
			} else {
				assert.NotEmpty(t, msgs)
			}
		})
	}
}

func TestValidateRichTextPayload(t *testing.T) {
	reg := Default()

	msgs, err := reg.Validate("richText", []byte(`{"body":"Welcome to the program."}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = reg.Validate("richText", []byte(`{}`))
	require.NoError(t, err)
	assert.NotEmpty(t, msgs)
}

func TestValidateListPayload(t *testing.T) {
	reg := Default()

	msgs, err := reg.Validate("list", []byte(`{"items":["stethoscope","white coat"],"ordered":true}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = reg.Validate("list", []byte(`{"items":[]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, msgs, "empty items array should fail")

	msgs, err = reg.Validate("list", []byte(`{"items":[1,2]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, msgs, "non-string items should fail")
}

func TestValidateUnknownContentType(t *testing.T) {
	reg := Default()

	_, err := reg.Validate("carousel", []byte(`{}`))
	assert.Error(t, err)
}

func TestLoadRegistryFromFile(t *testing.T) {
	fileReg := SectionRegistry{
		Version: "2.0",
		Sections: []SectionType{
			{
				ContentType: "quote",
				DisplayName: "Quote",
				Schema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"text"},
					"properties": map[string]interface{}{
						"text": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}
	data, err := json.Marshal(fileReg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sections.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.True(t, reg.Known("quote"))
	assert.False(t, reg.Known("image"))

	msgs, err := reg.Validate("quote", []byte(`{"text":"do no harm"}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
