package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsondo/pkg/core"
)

func mustDoc(t *testing.T, raw string) core.Document {
	t.Helper()
	var doc core.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func intPtr(i int) *int { return &i }

func TestInit(t *testing.T) {
	t.Run("Creates Nested Chain", func(t *testing.T) {
		doc := core.Document{}
		out, err := core.Init(doc, core.MustParsePath("a.b.c"))
		require.NoError(t, err)
		assert.Equal(t, core.Applied, out)
		assert.Equal(t, core.Document{"a": core.Object{"b": core.Object{"c": core.Object{}}}}, doc)
	})

	t.Run("Is Idempotent", func(t *testing.T) {
		once := core.Document{}
		_, err := core.Init(once, core.MustParsePath("x.y"))
		require.NoError(t, err)

		twice := core.Document{}
		_, err = core.Init(twice, core.MustParsePath("x.y"))
		require.NoError(t, err)
		out, err := core.Init(twice, core.MustParsePath("x.y"))
		require.NoError(t, err)

		assert.Equal(t, core.NoOp, out)
		assert.Equal(t, once, twice)
	})

	t.Run("Leaves Existing Value Untouched", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":[1,2]}}`)
		out, err := core.Init(doc, core.MustParsePath("a.b"))
		require.NoError(t, err)
		assert.Equal(t, core.NoOp, out)
		assert.Equal(t, []any{1.0, 2.0}, doc["a"].(map[string]any)["b"])
	})

	t.Run("Fails Through Scalar", func(t *testing.T) {
		doc := mustDoc(t, `{"a":"text"}`)
		_, err := core.Init(doc, core.MustParsePath("a.b"))
		assert.ErrorIs(t, err, core.ErrNotObject)
		assert.Equal(t, "text", doc["a"])
	})
}

func TestDelete(t *testing.T) {
	t.Run("Removes Key", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":1,"c":2}}`)
		out, err := core.Delete(doc, core.MustParsePath("a.b"), nil)
		require.NoError(t, err)
		assert.Equal(t, core.Applied, out)

		_, ok := core.Lookup(doc, core.MustParsePath("a.b"))
		assert.False(t, ok)
		assert.Equal(t, 2.0, doc["a"].(map[string]any)["c"])
	})

	t.Run("Missing Intermediate Is NoOp", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":1}}`)
		before := core.Clone(doc)
		out, err := core.Delete(doc, core.MustParsePath("x.y.z"), nil)
		require.NoError(t, err)
		assert.Equal(t, core.NoOp, out)
		assert.Equal(t, before, doc)
	})

	t.Run("Missing Leaf Is NoOp", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{}}`)
		out, err := core.Delete(doc, core.MustParsePath("a.b"), intPtr(1))
		require.NoError(t, err)
		assert.Equal(t, core.NoOp, out)
	})

	t.Run("Keep Truncates Array", func(t *testing.T) {
		tests := []struct {
			name string
			keep int
			want []any
		}{
			{"Prefix", 2, []any{1.0, 2.0}},
			{"Zero", 0, []any{}},
			{"Beyond Length", 10, []any{1.0, 2.0, 3.0, 4.0}},
			{"Negative", -1, []any{1.0, 2.0, 3.0}},
			{"Negative Beyond Length", -10, []any{}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				doc := mustDoc(t, `{"list":[1,2,3,4]}`)
				out, err := core.Delete(doc, core.MustParsePath("list"), intPtr(tc.keep))
				require.NoError(t, err)
				assert.Equal(t, core.Applied, out)
				assert.Equal(t, tc.want, doc["list"])
			})
		}
	})

	t.Run("Keep On Non Array Removes Key", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":{"c":1}}}`)
		_, err := core.Delete(doc, core.MustParsePath("a.b"), intPtr(1))
		require.NoError(t, err)
		_, ok := core.Lookup(doc, core.MustParsePath("a.b"))
		assert.False(t, ok)
	})

	t.Run("Then Init Recreates Empty Mapping", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":[1,2,3]}}`)
		p := core.MustParsePath("a.b")
		_, err := core.Delete(doc, p, nil)
		require.NoError(t, err)
		_, err = core.Init(doc, p)
		require.NoError(t, err)

		v, ok := core.Lookup(doc, p)
		require.True(t, ok)
		assert.Equal(t, core.Object{}, v)
	})
}

func TestInsert(t *testing.T) {
	values := map[string]any{
		"object": map[string]any{"k": "v"},
		"array":  []any{1.0, "two"},
		"string": "hello",
		"number": 42.5,
		"bool":   false,
	}
	for name, v := range values {
		t.Run("Round Trip "+name, func(t *testing.T) {
			doc := mustDoc(t, `{"a":{"b":"old"}}`)
			p := core.MustParsePath("a.n.c")
			out, err := core.Insert(doc, p, v)
			require.NoError(t, err)
			assert.Equal(t, core.Applied, out)

			got, ok := core.Lookup(doc, p)
			require.True(t, ok)
			assert.Equal(t, v, got)
		})
	}

	t.Run("Overwrites Any Type", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":{"deep":true}}}`)
		_, err := core.Insert(doc, core.MustParsePath("a.b"), "flat")
		require.NoError(t, err)
		assert.Equal(t, "flat", doc["a"].(map[string]any)["b"])
	})

	t.Run("Null Value Leaves Document Unchanged", func(t *testing.T) {
		doc := mustDoc(t, `{"a":{"b":1}}`)
		before, err := json.Marshal(doc)
		require.NoError(t, err)

		out, err := core.Insert(doc, core.MustParsePath("a.new.path"), nil)
		assert.ErrorIs(t, err, core.ErrNullValue)
		assert.Equal(t, core.NoOp, out)

		after, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})
}

func TestSort(t *testing.T) {
	t.Run("Objects Ascending", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[{"a":3},{"a":1},{"a":2}]}`)
		out, err := core.Sort(doc, core.MustParsePath("l"), "a", core.Asc)
		require.NoError(t, err)
		assert.Equal(t, core.Applied, out)
		assert.Equal(t, mustDoc(t, `{"l":[{"a":1},{"a":2},{"a":3}]}`), doc)
	})

	t.Run("Objects Descending", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[{"a":3},{"a":1},{"a":2}]}`)
		_, err := core.Sort(doc, core.MustParsePath("l"), "a", core.ParseOrder("DESC"))
		require.NoError(t, err)
		assert.Equal(t, mustDoc(t, `{"l":[{"a":3},{"a":2},{"a":1}]}`), doc)
	})

	t.Run("Bare Numbers", func(t *testing.T) {
		doc := mustDoc(t, `{"n":{"l":[3,1,2]}}`)
		_, err := core.Sort(doc, core.MustParsePath("n.l"), "", core.Asc)
		require.NoError(t, err)
		assert.Equal(t, []any{1.0, 2.0, 3.0}, doc["n"].(map[string]any)["l"])
	})

	t.Run("Is Stable", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[{"k":1,"id":"a"},{"k":0,"id":"b"},{"k":1,"id":"c"},{"k":0,"id":"d"}]}`)
		_, err := core.Sort(doc, core.MustParsePath("l"), "k", core.Desc)
		require.NoError(t, err)

		var ids []any
		for _, e := range doc["l"].([]any) {
			ids = append(ids, e.(map[string]any)["id"])
		}
		assert.Equal(t, []any{"a", "c", "b", "d"}, ids)
	})

	t.Run("Incomparable Leaves Array Untouched", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[3,"x",1]}`)
		out, err := core.Sort(doc, core.MustParsePath("l"), "", core.Asc)
		assert.ErrorIs(t, err, core.ErrIncomparable)
		assert.Equal(t, core.NoOp, out)
		assert.Equal(t, []any{3.0, "x", 1.0}, doc["l"])
	})

	t.Run("Missing Sort Key Fails", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[{"a":2},{"b":1}]}`)
		_, err := core.Sort(doc, core.MustParsePath("l"), "a", core.Asc)
		assert.ErrorIs(t, err, core.ErrIncomparable)
	})

	t.Run("Arrays With Equal Null Heads", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[[null,{"k":1},2],[null,{"k":1},1]]}`)
		out, err := core.Sort(doc, core.MustParsePath("l"), "", core.Asc)
		require.NoError(t, err)
		assert.Equal(t, core.Applied, out)
		assert.Equal(t, mustDoc(t, `{"l":[[null,{"k":1},1],[null,{"k":1},2]]}`), doc)
	})

	t.Run("Non Array Is NoOp", func(t *testing.T) {
		doc := mustDoc(t, `{"l":{"a":1}}`)
		out, err := core.Sort(doc, core.MustParsePath("l"), "a", core.Asc)
		require.NoError(t, err)
		assert.Equal(t, core.NoOp, out)
	})

	t.Run("Missing Intermediate Is NoOp", func(t *testing.T) {
		doc := mustDoc(t, `{"l":[2,1]}`)
		out, err := core.Sort(doc, core.MustParsePath("x.l"), "", core.Asc)
		require.NoError(t, err)
		assert.Equal(t, core.NoOp, out)
		assert.Equal(t, []any{2.0, 1.0}, doc["l"])
	})
}
