package integration

import (
	"strings"

	"github.com/google/uuid"
)

// FlowVersion is bumped when the shape of Entry.Data changes.
const FlowVersion = 1

// Field describes one input of a setup form.
type Field struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required"`
}

// Form asks the user for input.
type Form struct {
	StepID string  `json:"step_id"`
	Fields []Field `json:"fields"`
}

// StepResult is what a flow step produces: either a form to show or a
// created entry.
type StepResult struct {
	Form  *Form  `json:"form,omitempty"`
	Entry *Entry `json:"entry,omitempty"`
}

// Entry is one configured instance of the integration.
type Entry struct {
	ID      string            `json:"entry_id"`
	Domain  string            `json:"domain"`
	Title   string            `json:"title"`
	Version int               `json:"version"`
	Data    map[string]string `json:"data"`
}

// StoragePath returns the configured path, or the default one.
func (e Entry) StoragePath() string {
	if p := strings.TrimSpace(e.Data[ConfStoragePath]); p != "" {
		return p
	}
	return DefaultStoragePath
}

// Flow is the guided setup. It has a single "user" step.
type Flow struct {
	// DefaultPath overrides DefaultStoragePath in the form and the entry.
	DefaultPath string
}

func (f Flow) defaultPath() string {
	if f.DefaultPath != "" {
		return f.DefaultPath
	}
	return DefaultStoragePath
}

// StepUser shows the form when input is nil and creates an entry otherwise.
// A missing or blank storage path falls back to the default.
func (f Flow) StepUser(input map[string]string) StepResult {
	if input == nil {
		return StepResult{Form: &Form{
			StepID: "user",
			Fields: []Field{{Key: ConfStoragePath, Type: "string", Default: f.defaultPath()}},
		}}
	}

	path := strings.TrimSpace(input[ConfStoragePath])
	if path == "" {
		path = f.defaultPath()
	}
	return StepResult{Entry: &Entry{
		ID:      uuid.NewString(),
		Domain:  Domain,
		Title:   Title,
		Version: FlowVersion,
		Data:    map[string]string{ConfStoragePath: path},
	}}
}
