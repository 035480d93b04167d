package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsondo/pkg/core"
)

// Serializer defines how the document is read from and written to disk.
type Serializer interface {
	// Parse decodes a whole document. The top level must be a mapping.
	Parse(data []byte) (core.Document, error)
	// Serialize encodes a whole document.
	Serialize(doc core.Document) ([]byte, error)
	// Format names the encoding ("json", "yaml").
	Format() string
}

// SerializerFor picks a serializer from the file extension.
// Anything that is not YAML is stored as JSON. strict only affects YAML:
// JSON numbers are always kept exact.
func SerializerFor(path string, strict bool) Serializer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLSerializer(strict)
	default:
		return NewJSONSerializer()
	}
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON files.
//
// Numbers are decoded as json.Number, so a rewrite reproduces every number
// literal the file held, including integers beyond float64 precision.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Parse decodes exactly one JSON object. Trailing data makes the file invalid.
func (s *JSONSerializer) Parse(data []byte) (core.Document, error) {
	var doc core.Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("invalid json: top level is null")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data after offset %d", decoder.InputOffset())
	}
	return doc, nil
}

// Serialize writes the document with 2-space indentation.
func (s *JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	if doc == nil {
		doc = core.Document{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *JSONSerializer) Format() string { return "json" }

// --- YAML Serializer ---

type YAMLSerializer struct {
	// Strict converts numbers to json.Number, matching JSON strict mode.
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(data []byte) (core.Document, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if payload == nil {
		return core.Document{}, nil
	}
	return normalize(payload, s.Strict).(map[string]any), nil
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	if doc == nil {
		doc = core.Document{}
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(YAMLValue(doc)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *YAMLSerializer) Format() string { return "yaml" }

// normalize makes YAML-decoded values look like JSON-decoded ones:
// mappings get string keys and, in strict mode, numbers become json.Number.
func normalize(val any, strict bool) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = normalize(val, strict)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprintf("%v", k)] = normalize(val, strict)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = normalize(val, strict)
		}
		return l
	case int:
		if strict {
			return json.Number(fmt.Sprintf("%d", v))
		}
		return v
	case int64:
		if strict {
			return json.Number(fmt.Sprintf("%d", v))
		}
		return v
	case uint64:
		if strict {
			return json.Number(fmt.Sprintf("%d", v))
		}
		return v
	case float64:
		if strict {
			return json.Number(fmt.Sprintf("%v", v))
		}
		return v
	default:
		return v
	}
}

// YAMLValue prepares a decoded value for a YAML encoder: json.Number values
// become scalar nodes so they are written as plain numbers rather than
// quoted strings.
func YAMLValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = YAMLValue(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = YAMLValue(val)
		}
		return l
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(string(v), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(v)}
	default:
		return v
	}
}
