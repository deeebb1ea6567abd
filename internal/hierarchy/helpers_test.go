package hierarchy_test

import (
	"context"
	"testing"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/memstore"

	"github.com/stretchr/testify/require"
)

var (
	categoryKind = hierarchy.Kind{
		Name:       "category",
		Table:      "categories",
		TypeColumn: "type",
		Types:      []string{"post", "product"},
		Attributes: []string{"description", "status", "image_id"},
		Policy:     hierarchy.Reparent,
	}

	menuItemKind = hierarchy.Kind{
		Name:        "menu_item",
		Table:       "menu_items",
		NameColumn:  "title",
		ScopeColumn: "menu_id",
		Attributes:  []string{"url", "target", "css_class", "icon", "is_active"},
		Policy:      hierarchy.Cascade,
	}
)

func id(v int64) *int64 { return &v }

func str(v string) *string { return &v }

func newService(t *testing.T, kind hierarchy.Kind, opts ...hierarchy.Option) (*hierarchy.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc, err := hierarchy.NewService(kind, store, opts...)
	require.NoError(t, err)
	return svc, store
}

func mustCreate(t *testing.T, svc *hierarchy.Service, in hierarchy.CreateInput) *hierarchy.Node {
	t.Helper()
	n, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return n
}

type faults struct {
	deleteByID     error
	insertFailures int
	insertErr      error
}

// failingRepo bọc Repository và trả lỗi theo faults, kể cả bên trong transaction
type failingRepo struct {
	hierarchy.Repository
	faults *faults
}

func (f *failingRepo) DeleteByID(ctx context.Context, id int64) error {
	if f.faults.deleteByID != nil {
		return f.faults.deleteByID
	}
	return f.Repository.DeleteByID(ctx, id)
}

func (f *failingRepo) Insert(ctx context.Context, n *hierarchy.Node) (*hierarchy.Node, error) {
	if f.faults.insertFailures > 0 {
		f.faults.insertFailures--
		return nil, f.faults.insertErr
	}
	return f.Repository.Insert(ctx, n)
}

func (f *failingRepo) RunInTransaction(ctx context.Context, fn func(hierarchy.Repository) error) error {
	return f.Repository.RunInTransaction(ctx, func(tx hierarchy.Repository) error {
		return fn(&failingRepo{Repository: tx, faults: f.faults})
	})
}
