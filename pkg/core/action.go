package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Todo names one of the engine operations.
type Todo string

const (
	TodoInit   Todo = "init"
	TodoDelete Todo = "delete"
	TodoInsert Todo = "insert"
	TodoSort   Todo = "sort"
)

// Action is a single mutation request, built per event.
type Action struct {
	Path   Path
	Todo   Todo
	Keep   *int
	Value  any
	SortBy string
	SortTo Order
}

// ParseAction extracts an Action from event data.
//
// Recognised keys are "path", "todo", "keep", "value", "sort_by" and
// "sort_to". Only "path" and "todo" are required.
func ParseAction(data map[string]any) (Action, error) {
	rawPath, _ := data["path"].(string)
	rawTodo, _ := data["todo"].(string)
	if rawPath == "" || rawTodo == "" {
		return Action{}, fmt.Errorf("%w: path and todo are required", ErrMissingField)
	}

	p, err := ParsePath(rawPath)
	if err != nil {
		return Action{}, err
	}

	a := Action{
		Path:   p,
		Todo:   Todo(rawTodo),
		Value:  data["value"],
		SortTo: Asc,
	}

	switch a.Todo {
	case TodoInit, TodoDelete, TodoInsert, TodoSort:
	default:
		return Action{}, fmt.Errorf("%w: %s", ErrUnknownAction, rawTodo)
	}

	if raw, ok := data["keep"]; ok && raw != nil {
		keep, err := toInt(raw)
		if err != nil {
			return Action{}, err
		}
		a.Keep = &keep
	}
	if s, ok := data["sort_by"].(string); ok {
		a.SortBy = s
	}
	if s, ok := data["sort_to"].(string); ok {
		a.SortTo = ParseOrder(s)
	}

	return a, nil
}

// Apply runs the action against doc.
func (a Action) Apply(doc Document) (Outcome, error) {
	switch a.Todo {
	case TodoInit:
		return Init(doc, a.Path)
	case TodoDelete:
		return Delete(doc, a.Path, a.Keep)
	case TodoInsert:
		return Insert(doc, a.Path, a.Value)
	case TodoSort:
		return Sort(doc, a.Path, a.SortBy, a.SortTo)
	default:
		return NoOp, fmt.Errorf("%w: %s", ErrUnknownAction, a.Todo)
	}
}

// Data renders the action back into event data.
func (a Action) Data() map[string]any {
	data := map[string]any{
		"path": a.Path.String(),
		"todo": string(a.Todo),
	}
	if a.Keep != nil {
		data["keep"] = *a.Keep
	}
	if a.Value != nil {
		data["value"] = a.Value
	}
	if a.SortBy != "" {
		data["sort_by"] = a.SortBy
	}
	if a.Todo == TodoSort {
		data["sort_to"] = string(a.SortTo)
	}
	return data
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int(x), nil
		}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: got %v", ErrInvalidKeep, v)
}
