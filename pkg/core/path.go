package core

import (
	"fmt"
	"strings"
)

// Path is a dotted path. Each segment addresses one mapping key.
type Path []string

// ParsePath splits a dotted path into its segments.
// Segments are literal keys, so "a..b" addresses the key "" under "a".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, ErrEmptyPath
	}
	return Path(strings.Split(s, ".")), nil
}

// MustParsePath is like ParsePath but panics on an empty path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Parent returns every segment but the last.
func (p Path) Parent() []string {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Leaf returns the last segment.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// walk resolves the mapping that holds the leaf of p.
// With vivify, absent intermediate segments are created as empty mappings.
// Without it, an absent segment yields errMissing.
func walk(doc Document, p Path, vivify bool) (Object, error) {
	if doc == nil {
		return nil, errMissing
	}
	current := doc
	for i, seg := range p.Parent() {
		next, ok := current[seg]
		if !ok {
			if !vivify {
				return nil, errMissing
			}
			created := make(Object)
			current[seg] = created
			current = created
			continue
		}
		obj, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s", ErrNotObject, Path(p[:i+1]).String(), KindOf(next))
		}
		current = obj
	}
	return current, nil
}

// Lookup returns the value at p, if every segment resolves.
func Lookup(doc Document, p Path) (any, bool) {
	parent, err := walk(doc, p, false)
	if err != nil {
		return nil, false
	}
	v, ok := parent[p.Leaf()]
	return v, ok
}
