package hierarchy_test

import (
	"encoding/json"
	"testing"

	"cms-backend/internal/hierarchy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(level []*hierarchy.TreeNode) []string {
	out := make([]string, 0, len(level))
	for _, tn := range level {
		out = append(out, tn.Name)
	}
	return out
}

func TestBuildForest_OrdersSiblings(t *testing.T) {
	nodes := []*hierarchy.Node{
		{ID: 1, Name: "root", SortOrder: 0},
		{ID: 2, ParentID: id(1), Name: "two", SortOrder: 2},
		{ID: 3, ParentID: id(1), Name: "zero", SortOrder: 0},
		{ID: 4, ParentID: id(1), Name: "one", SortOrder: 1},
	}

	forest := hierarchy.BuildForest(nodes)
	require.Len(t, forest, 1)
	assert.Equal(t, []string{"zero", "one", "two"}, names(forest[0].Children))
}

func TestBuildForest_TieBreaksByName(t *testing.T) {
	nodes := []*hierarchy.Node{
		{ID: 1, Name: "Charlie", SortOrder: 1},
		{ID: 2, Name: "alpha", SortOrder: 1},
		{ID: 3, Name: "Bravo", SortOrder: 1},
		{ID: 4, Name: "first", SortOrder: 0},
	}

	forest := hierarchy.BuildForest(nodes)
	assert.Equal(t, []string{"first", "Bravo", "Charlie", "alpha"}, names(forest))
}

func TestBuildForest_DepthAndNesting(t *testing.T) {
	nodes := []*hierarchy.Node{
		{ID: 4, ParentID: id(3), Name: "c"},
		{ID: 3, ParentID: id(2), Name: "b"},
		{ID: 2, ParentID: id(1), Name: "a"},
		{ID: 1, Name: "root"},
		{ID: 9, Name: "second root", SortOrder: 1},
	}

	forest := hierarchy.BuildForest(nodes)
	require.Len(t, forest, 2)

	flat := hierarchy.Flatten(forest)
	got := make(map[string]int)
	for _, tn := range flat {
		got[tn.Name] = tn.Depth
	}
	assert.Equal(t, map[string]int{"root": 0, "a": 1, "b": 2, "c": 3, "second root": 0}, got)
	assert.Equal(t, []string{"root", "a", "b", "c", "second root"}, names(flat))
}

func TestBuildForest_OmitsOrphans(t *testing.T) {
	nodes := []*hierarchy.Node{
		{ID: 1, Name: "root"},
		{ID: 2, ParentID: id(77), Name: "orphan"},
		{ID: 5, ParentID: id(6), Name: "loop-a"},
		{ID: 6, ParentID: id(5), Name: "loop-b"},
	}

	forest := hierarchy.BuildForest(nodes)
	assert.Equal(t, []string{"root"}, names(hierarchy.Flatten(forest)))
}

func TestBuildForest_Empty(t *testing.T) {
	forest := hierarchy.BuildForest(nil)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestTreeNode_JSON(t *testing.T) {
	forest := hierarchy.BuildForest([]*hierarchy.Node{
		{ID: 1, Name: "root", Slug: "root"},
		{ID: 2, ParentID: id(1), Name: "leaf", Slug: "leaf"},
	})

	raw, err := json.Marshal(forest)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "root", decoded[0]["name"])
	assert.EqualValues(t, 0, decoded[0]["depth"])

	children := decoded[0]["children"].([]any)
	require.Len(t, children, 1)
	leaf := children[0].(map[string]any)
	assert.Equal(t, "leaf", leaf["slug"])
	assert.EqualValues(t, 1, leaf["depth"])
	assert.Equal(t, []any{}, leaf["children"])

	var back []*hierarchy.TreeNode
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 1)
	require.Len(t, back[0].Children, 1)
	assert.Equal(t, int64(2), back[0].Children[0].ID)
}
