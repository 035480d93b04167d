// Package core holds the document model, the path mutation engine and the
// service that bridges events to a persisted document.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the root of a stored JSON document. It is always a mapping.
type Document = map[string]any

// Object is a mapping node inside a document.
type Object = map[string]any

// Array is a sequence node inside a document.
type Array = []any

// Kind classifies a document value.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// KindOf reports whether v is a mapping, a sequence or a scalar.
func KindOf(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindScalar
	}
}

// Clone returns a deep copy of a document value.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = Clone(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = Clone(val)
		}
		return l
	default:
		return t
	}
}

// EventType names an event on the bus.
type EventType = string

const (
	// EventJSONDo carries a mutation request.
	EventJSONDo EventType = "json_do"
	// EventUpdated is fired after a mutation has been persisted.
	EventUpdated EventType = "json_storage_updated"
	// EventChanged is fired when the storage file changes on disk.
	EventChanged EventType = "json_storage_changed"
)

// Event is a message on the bus.
type Event struct {
	Type      EventType
	Data      map[string]any
	Origin    string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if path, ok := e.Data["path"].(string); ok {
		return fmt.Sprintf("%s(%s)", e.Type, path)
	}
	return e.Type
}

// DecodeEventData decodes a JSON object into event data.
// Numbers are kept as json.Number so integral values survive untouched.
func DecodeEventData(raw []byte) (map[string]any, error) {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid event data: %w", err)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}
