package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Outcome reports whether an operation changed the document.
type Outcome int

const (
	NoOp Outcome = iota
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "no-op"
}

// Order is the direction of a sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder maps a sort direction onto Order. Only "desc" (any case)
// sorts descending.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Init ensures a mapping exists at p. An existing value of any type is left alone.
func Init(doc Document, p Path) (Outcome, error) {
	parent, err := walk(doc, p, true)
	if err != nil {
		return NoOp, err
	}
	if _, ok := parent[p.Leaf()]; ok {
		return NoOp, nil
	}
	parent[p.Leaf()] = make(Object)
	return Applied, nil
}

// Delete removes the value at p. When keep is set and the value is an
// array, the array is truncated to arr[:keep] instead, with negative keep
// counting from the end.
func Delete(doc Document, p Path, keep *int) (Outcome, error) {
	parent, err := walk(doc, p, false)
	if err != nil {
		return NoOp, ignoreUnresolved(err)
	}
	current, ok := parent[p.Leaf()]
	if !ok {
		return NoOp, nil
	}
	if arr, isArray := current.([]any); isArray && keep != nil {
		parent[p.Leaf()] = truncate(arr, *keep)
		return Applied, nil
	}
	delete(parent, p.Leaf())
	return Applied, nil
}

// truncate returns arr[:keep] with slice-expression semantics for
// out-of-range and negative bounds.
func truncate(arr []any, keep int) []any {
	n := len(arr)
	switch {
	case keep < 0:
		keep = max(n+keep, 0)
	case keep > n:
		keep = n
	}
	out := make([]any, keep)
	copy(out, arr[:keep])
	return out
}

// Insert sets the value at p, creating intermediate mappings and replacing
// whatever was there. A nil value is rejected and the document is left as is.
func Insert(doc Document, p Path, value any) (Outcome, error) {
	if value == nil {
		return NoOp, ErrNullValue
	}
	parent, err := walk(doc, p, true)
	if err != nil {
		return NoOp, err
	}
	parent[p.Leaf()] = value
	return Applied, nil
}

// Sort stably sorts the array at p. Mapping elements are keyed by their
// sortBy field, other elements by themselves. If any two keys cannot be
// compared the array is left untouched and ErrIncomparable is returned.
func Sort(doc Document, p Path, sortBy string, order Order) (Outcome, error) {
	parent, err := walk(doc, p, false)
	if err != nil {
		return NoOp, ignoreUnresolved(err)
	}
	arr, ok := parent[p.Leaf()].([]any)
	if !ok {
		return NoOp, nil
	}

	sorted := slices.Clone(arr)
	var cmpErr error
	slices.SortStableFunc(sorted, func(a, b any) int {
		if cmpErr != nil {
			return 0
		}
		c, err := Compare(sortKey(a, sortBy), sortKey(b, sortBy))
		if err != nil {
			cmpErr = err
			return 0
		}
		if order == Desc {
			return -c
		}
		return c
	})
	if cmpErr != nil {
		return NoOp, fmt.Errorf("sort %s: %w", p, cmpErr)
	}

	parent[p.Leaf()] = sorted
	return Applied, nil
}

func sortKey(v any, sortBy string) any {
	if obj, ok := v.(map[string]any); ok {
		return obj[sortBy]
	}
	return v
}

// ignoreUnresolved turns resolution misses into a silent no-op.
func ignoreUnresolved(err error) error {
	if errors.Is(err, errMissing) || errors.Is(err, ErrNotObject) {
		return nil
	}
	return err
}
