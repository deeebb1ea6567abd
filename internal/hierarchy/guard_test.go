package hierarchy_test

import (
	"context"
	"testing"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// root(1) → a(2) → b(3) → c(4), root → d(5)
func seedChain(store *memstore.Store) {
	store.Seed(
		&hierarchy.Node{ID: 1, Name: "root", Slug: "root"},
		&hierarchy.Node{ID: 2, ParentID: id(1), Name: "a", Slug: "a"},
		&hierarchy.Node{ID: 3, ParentID: id(2), Name: "b", Slug: "b"},
		&hierarchy.Node{ID: 4, ParentID: id(3), Name: "c", Slug: "c"},
		&hierarchy.Node{ID: 5, ParentID: id(1), Name: "d", Slug: "d"},
	)
}

func TestGuard_Descendants(t *testing.T) {
	store := memstore.New()
	seedChain(store)
	guard := hierarchy.NewGuard(store)
	ctx := context.Background()

	got, err := guard.Descendants(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3, 4, 5}, got)
	assert.NotContains(t, got, int64(1))

	got, err = guard.Descendants(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got)

	got, err = guard.Descendants(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGuard_Descendants_TerminatesOnCorruptCycle(t *testing.T) {
	store := memstore.New()
	store.Seed(
		&hierarchy.Node{ID: 1, ParentID: id(3), Name: "x", Slug: "x"},
		&hierarchy.Node{ID: 2, ParentID: id(1), Name: "y", Slug: "y"},
		&hierarchy.Node{ID: 3, ParentID: id(2), Name: "z", Slug: "z"},
	)

	got, err := hierarchy.NewGuard(store).Descendants(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, got)
}

func TestGuard_ValidateParentAssignment(t *testing.T) {
	store := memstore.New()
	seedChain(store)
	store.Seed(&hierarchy.Node{ID: 20, Name: "other menu", Slug: "other", ScopeID: id(2)})
	guard := hierarchy.NewGuard(store)
	ctx := context.Background()

	tests := []struct {
		name      string
		nodeID    int64
		candidate *int64
		scope     hierarchy.Scope
		wantErr   error
		wantID    int64
	}{
		{name: "nil parent promotes to root", nodeID: 3, candidate: nil},
		{name: "self parent", nodeID: 3, candidate: id(3), wantErr: hierarchy.ErrSelfParent},
		{name: "direct child as parent", nodeID: 2, candidate: id(3), wantErr: hierarchy.ErrCyclicParent},
		{name: "deep descendant as parent", nodeID: 1, candidate: id(4), wantErr: hierarchy.ErrCyclicParent},
		{name: "missing parent", nodeID: 3, candidate: id(99), wantErr: hierarchy.ErrParentNotFound},
		{name: "sibling subtree is fine", nodeID: 5, candidate: id(4), wantID: 4},
		{name: "create under existing parent", nodeID: 0, candidate: id(2), wantID: 2},
		{name: "create under missing parent", nodeID: 0, candidate: id(42), wantErr: hierarchy.ErrParentNotFound},
		{name: "parent from another scope", nodeID: 0, candidate: id(20), scope: hierarchy.Scope{ScopeID: id(1)}, wantErr: hierarchy.ErrParentNotFound},
		{name: "parent in same scope", nodeID: 0, candidate: id(20), scope: hierarchy.Scope{ScopeID: id(2)}, wantID: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, err := guard.ValidateParentAssignment(ctx, tt.nodeID, tt.candidate, tt.scope)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, hierarchy.ErrValidation)
				return
			}
			require.NoError(t, err)
			if tt.wantID == 0 {
				assert.Nil(t, parent)
				return
			}
			require.NotNil(t, parent)
			assert.Equal(t, tt.wantID, parent.ID)
		})
	}
}

func TestGuard_Ancestors(t *testing.T) {
	store := memstore.New()
	seedChain(store)
	guard := hierarchy.NewGuard(store)

	chain, err := guard.Ancestors(context.Background(), 4)
	require.NoError(t, err)

	ids := make([]int64, 0, len(chain))
	for _, n := range chain {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	_, err = guard.Ancestors(context.Background(), 404)
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}
