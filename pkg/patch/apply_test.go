package patch

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/sheetsync/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		patch    Patch
		expected string
	}{
		{
			name:     "add member",
			doc:      `{"a":1}`,
			patch:    Patch{{Op: KindAdd, Path: "/b", Value: 2}},
			expected: `{"a":1,"b":2}`,
		},
		{
			name:     "add replaces existing member",
			doc:      `{"a":1}`,
			patch:    Patch{{Op: KindAdd, Path: "/a", Value: "x"}},
			expected: `{"a":"x"}`,
		},
		{
			name:     "add inserts into array",
			doc:      `{"l":[1,3]}`,
			patch:    Patch{{Op: KindAdd, Path: "/l/1", Value: 2}},
			expected: `{"l":[1,2,3]}`,
		},
		{
			name:     "add appends with dash",
			doc:      `{"l":[1]}`,
			patch:    Patch{{Op: KindAdd, Path: "/l/-", Value: 2}},
			expected: `{"l":[1,2]}`,
		},
		{
			name:     "add at array length appends",
			doc:      `{"l":[1]}`,
			patch:    Patch{{Op: KindAdd, Path: "/l/1", Value: 2}},
			expected: `{"l":[1,2]}`,
		},
		{
			name:     "remove array element",
			doc:      `{"l":[1,2,3]}`,
			patch:    Patch{{Op: KindRemove, Path: "/l/0"}},
			expected: `{"l":[2,3]}`,
		},
		{
			name:     "replace nested member",
			doc:      `{"documents":[{"path":"a","timelineIsPlaying":false}]}`,
			patch:    Patch{{Op: KindReplace, Path: "/documents/0/timelineIsPlaying", Value: true}},
			expected: `{"documents":[{"path":"a","timelineIsPlaying":true}]}`,
		},
		{
			name:     "replace root",
			doc:      `{"a":1}`,
			patch:    Patch{{Op: KindReplace, Path: "", Value: map[string]any{"b": 2}}},
			expected: `{"b":2}`,
		},
		{
			name:     "move member",
			doc:      `{"animations":{"Walk":{"name":"Walk"}}}`,
			patch:    Patch{{Op: KindMove, From: "/animations/Walk", Path: "/animations/Run"}},
			expected: `{"animations":{"Run":{"name":"Walk"}}}`,
		},
		{
			name:     "move within array",
			doc:      `{"l":["a","b","c"]}`,
			patch:    Patch{{Op: KindMove, From: "/l/0", Path: "/l/2"}},
			expected: `{"l":["b","c","a"]}`,
		},
		{
			name:     "copy is deep",
			doc:      `{"a":{"x":[1]}}`,
			patch:    Patch{{Op: KindCopy, From: "/a", Path: "/b"}, {Op: KindAdd, Path: "/b/x/-", Value: 2}},
			expected: `{"a":{"x":[1]},"b":{"x":[1,2]}}`,
		},
		{
			name:     "escaped tokens",
			doc:      `{"a/b":{"c~d":1}}`,
			patch:    Patch{{Op: KindReplace, Path: "/a~1b/c~0d", Value: 2}},
			expected: `{"a/b":{"c~d":2}}`,
		},
		{
			name:     "test is not enforced",
			doc:      `{"a":1}`,
			patch:    Patch{{Op: KindTest, Path: "/a", Value: 99}, {Op: KindAdd, Path: "/b", Value: 2}},
			expected: `{"a":1,"b":2}`,
		},
		{
			name:     "test on missing path is not enforced",
			doc:      `{"a":1}`,
			patch:    Patch{{Op: KindTest, Path: "/nope/deeper", Value: 1}},
			expected: `{"a":1}`,
		},
		{
			name:     "ops apply in order",
			doc:      `{"l":[]}`,
			patch:    Patch{{Op: KindAdd, Path: "/l/-", Value: "a"}, {Op: KindAdd, Path: "/l/0", Value: "b"}, {Op: KindRemove, Path: "/l/1"}},
			expected: `{"l":["b"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tree(t, tt.doc), tt.patch)
			require.NoError(t, err)
			assert.Equal(t, tree(t, tt.expected), got)
		})
	}
}

func TestApplyEmptyPatchIsNoop(t *testing.T) {
	doc := tree(t, `{"documents":[{"path":"a"}],"currentDocumentPath":"a"}`)
	before := Clone(doc)

	got, err := Apply(doc, Patch{})
	require.NoError(t, err)
	assert.Equal(t, before, got)
}

func TestApplyUnresolvedPaths(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
	}{
		{"missing parent", Patch{{Op: KindAdd, Path: "/missing/child", Value: 1}}},
		{"replace missing member", Patch{{Op: KindReplace, Path: "/nope", Value: 1}}},
		{"remove missing member", Patch{{Op: KindRemove, Path: "/nope"}}},
		{"index out of range", Patch{{Op: KindReplace, Path: "/l/5", Value: 1}}},
		{"insert past end", Patch{{Op: KindAdd, Path: "/l/3", Value: 1}}},
		{"leading zero index", Patch{{Op: KindRemove, Path: "/l/01"}}},
		{"scalar parent", Patch{{Op: KindAdd, Path: "/a/b", Value: 1}}},
		{"move from missing", Patch{{Op: KindMove, From: "/nope", Path: "/b"}}},
		{"move into own child", Patch{{Op: KindMove, From: "/o", Path: "/o/inner"}}},
		{"copy from missing", Patch{{Op: KindCopy, From: "/nope", Path: "/b"}}},
		{"remove root", Patch{{Op: KindRemove, Path: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tree(t, `{"a":1,"l":[1],"o":{}}`), tt.patch)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodePatchResolution), "got %v", err)
		})
	}
}

func TestApplyReportsFailingOperationIndex(t *testing.T) {
	_, err := Apply(tree(t, `{"a":1}`), Patch{
		{Op: KindAdd, Path: "/b", Value: 1},
		{Op: KindRemove, Path: "/documents/0"},
	})
	require.Error(t, err)

	syncErr, ok := err.(*errors.SyncError)
	require.True(t, ok)
	assert.Equal(t, 1, syncErr.Details["index"])
	assert.Equal(t, "remove", syncErr.Details["op"])
	assert.Equal(t, "/documents/0", syncErr.Details["path"])
}

func TestApplyWithTestEnforcement(t *testing.T) {
	doc := tree(t, `{"a":1}`)

	_, err := Apply(Clone(doc), Patch{{Op: KindTest, Path: "/a", Value: 1}}, WithTestEnforcement(true))
	assert.NoError(t, err)

	_, err = Apply(Clone(doc), Patch{{Op: KindTest, Path: "/a", Value: 2}}, WithTestEnforcement(true))
	assert.True(t, errors.Is(err, errors.ErrCodePatchResolution))

	_, err = Apply(Clone(doc), Patch{{Op: KindTest, Path: "/b", Value: 1}}, WithTestEnforcement(true))
	assert.True(t, errors.Is(err, errors.ErrCodePatchResolution))
}

func TestApplyDoesNotAliasOperationValues(t *testing.T) {
	value := map[string]any{"x": []any{1.0}}
	doc, err := Apply(tree(t, `{}`), Patch{{Op: KindAdd, Path: "/v", Value: value}})
	require.NoError(t, err)

	value["x"] = "mutated"
	assert.Equal(t, []any{1.0}, doc.(map[string]any)["v"].(map[string]any)["x"])
}
