package menu

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/memstore"
	"cms-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo giữ menu trong map; Delete gọi onDelete để test xóa item đi kèm
type fakeRepo struct {
	mu       sync.Mutex
	menus    map[int64]*Menu
	nextID   int64
	onDelete func(id int64) int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{menus: make(map[int64]*Menu)}
}

func (r *fakeRepo) Create(ctx context.Context, m *Menu) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.menus {
		if existing.Slug == m.Slug {
			return nil, ErrDuplicateSlug
		}
		if m.Location != nil && existing.Location != nil && *existing.Location == *m.Location {
			return nil, ErrLocationTaken
		}
	}
	r.nextID++
	cp := *m
	cp.ID = r.nextID
	r.menus[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.menus[id]
	if !ok {
		return nil, ErrMenuNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Menu, error) {
	return r.find(func(m *Menu) bool { return m.Slug == slug })
}

func (r *fakeRepo) GetByLocation(ctx context.Context, location string) (*Menu, error) {
	return r.find(func(m *Menu) bool { return m.Location != nil && *m.Location == location })
}

func (r *fakeRepo) find(match func(*Menu) bool) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.menus {
		if match(m) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMenuNotFound
}

func (r *fakeRepo) List(ctx context.Context) ([]*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Menu, 0, len(r.menus))
	for _, m := range r.menus {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, patch MenuPatch) (*Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.menus[id]
	if !ok {
		return nil, ErrMenuNotFound
	}
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Slug != nil {
		m.Slug = *patch.Slug
	}
	if patch.Location != nil {
		loc := *patch.Location
		if loc == "" {
			m.Location = nil
		} else {
			m.Location = &loc
		}
	}
	if patch.IsActive != nil {
		m.IsActive = *patch.IsActive
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[id]; !ok {
		return 0, ErrMenuNotFound
	}
	delete(r.menus, id)
	if r.onDelete != nil {
		return r.onDelete(id), nil
	}
	return 0, nil
}

func (r *fakeRepo) ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.menus {
		if m.Slug == slug && (excludeID == nil || m.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

type fixture struct {
	svc   *Service
	repo  *fakeRepo
	items *hierarchy.Service
	store *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	items, err := hierarchy.NewService(ItemKind, store, hierarchy.WithCache(cache.NewMemoryCache(), time.Minute))
	require.NoError(t, err)

	repo := newFakeRepo()
	// giống DELETE FROM menu_items WHERE menu_id = $1
	repo.onDelete = func(menuID int64) int64 {
		var removed int64
		_ = store.RunInTransaction(context.Background(), func(tx hierarchy.Repository) error {
			nodes, _ := tx.FindAll(context.Background(), hierarchy.Scope{ScopeID: &menuID})
			ids := make([]int64, 0, len(nodes))
			for _, n := range nodes {
				ids = append(ids, n.ID)
			}
			removed, _ = tx.DeleteByIDs(context.Background(), ids)
			return nil
		})
		return removed
	}

	return &fixture{svc: NewService(repo, items), repo: repo, items: items, store: store}
}

func strPtr(v string) *string { return &v }

func TestService_CreateGeneratesUniqueSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateMenuReq{Name: "Menu Chính"})
	require.NoError(t, err)
	assert.Equal(t, "menu-chinh", first.Slug)
	assert.True(t, first.IsActive)

	second, err := f.svc.Create(ctx, CreateMenuReq{Name: "Menu chính"})
	require.NoError(t, err)
	assert.Equal(t, "menu-chinh-1", second.Slug)
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateMenuReq{Name: "   "})
	assert.ErrorIs(t, err, hierarchy.ErrValidation)

	_, err = f.svc.Create(ctx, CreateMenuReq{Name: "Footer", Slug: strPtr("!!!")})
	reason, ok := hierarchy.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, hierarchy.ReasonInvalidSlug, reason)

	_, err = f.svc.Create(ctx, CreateMenuReq{Name: "Footer", Slug: strPtr("Footer Links")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateMenuReq{Name: "Other", Slug: strPtr("footer-links")})
	assert.ErrorIs(t, err, ErrDuplicateSlug)
	assert.ErrorIs(t, err, hierarchy.ErrConflict)
}

func TestService_UpdateRegeneratesSlugOnRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, CreateMenuReq{Name: "Header"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, m.ID, MenuPatch{Name: strPtr("Thanh điều hướng")})
	require.NoError(t, err)
	assert.Equal(t, "thanh-dieu-huong", updated.Slug)

	// cùng tên thì giữ slug, không tự va chạm với chính mình
	same, err := f.svc.Update(ctx, m.ID, MenuPatch{Slug: strPtr("thanh-dieu-huong")})
	require.NoError(t, err)
	assert.Equal(t, "thanh-dieu-huong", same.Slug)

	_, err = f.svc.Update(ctx, 999, MenuPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestService_DeleteRemovesItemsAndInvalidatesTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, CreateMenuReq{Name: "Header", Location: strPtr("header")})
	require.NoError(t, err)
	root, err := f.items.Create(ctx, hierarchy.CreateInput{Name: "Sản phẩm", ScopeID: &m.ID})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, hierarchy.CreateInput{Name: "Laptop", ParentID: &root.ID, ScopeID: &m.ID})
	require.NoError(t, err)

	tree, err := f.svc.TreeByLocation(ctx, "header")
	require.NoError(t, err)
	require.Len(t, tree.Items, 1)
	assert.Len(t, tree.Items[0].Children, 1)

	require.NoError(t, f.svc.Delete(ctx, m.ID))
	assert.Equal(t, 0, f.store.Len())

	forest, err := f.items.FindTree(ctx, hierarchy.Scope{ScopeID: &m.ID})
	require.NoError(t, err)
	assert.Empty(t, forest, "cached tree must be dropped")

	assert.ErrorIs(t, f.svc.Delete(ctx, m.ID), ErrMenuNotFound)
}

func TestService_TreeIsScopedToMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	header, err := f.svc.Create(ctx, CreateMenuReq{Name: "Header"})
	require.NoError(t, err)
	footer, err := f.svc.Create(ctx, CreateMenuReq{Name: "Footer"})
	require.NoError(t, err)

	_, err = f.items.Create(ctx, hierarchy.CreateInput{Name: "Trang chủ", ScopeID: &header.ID})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, hierarchy.CreateInput{Name: "Liên hệ", ScopeID: &footer.ID})
	require.NoError(t, err)

	tree, err := f.svc.Tree(ctx, footer.ID)
	require.NoError(t, err)
	require.Len(t, tree.Items, 1)
	assert.Equal(t, "Liên hệ", tree.Items[0].Name)

	_, err = f.svc.TreeByLocation(ctx, "nowhere")
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestCreateMenuItemReq(t *testing.T) {
	assert.Error(t, CreateMenuItemReq{}.Validate())
	assert.Error(t, CreateMenuItemReq{Name: "A", Target: "_new"}.Validate())

	in := CreateMenuItemReq{Name: "Blog", URL: strPtr("/blog")}.ToInput()
	assert.Equal(t, TargetSelf, in.Attributes["target"])
	assert.Equal(t, true, in.Attributes["is_active"])
	assert.Equal(t, "/blog", in.Attributes["url"])
	assert.Nil(t, in.ScopeID)
}

func TestUpdateMenuItemReq(t *testing.T) {
	zero := 0
	req := UpdateMenuItemReq{SortOrder: &zero, Target: strPtr(TargetBlank)}
	require.NoError(t, req.Validate())

	fields := req.ToFields()
	assert.Equal(t, 0, *fields.SortOrder)
	assert.Nil(t, fields.Parent)
	assert.Equal(t, TargetBlank, fields.Attributes["target"])
}

func TestMenuReqValidation(t *testing.T) {
	assert.NoError(t, CreateMenuReq{Name: "Header", Location: strPtr("main-header")}.Validate())
	assert.Error(t, CreateMenuReq{Name: "Header", Location: strPtr("Main Header")}.Validate())
	assert.NoError(t, UpdateMenuReq{Location: strPtr("")}.Validate())
	assert.True(t, IsValidTarget(TargetTop))
	assert.False(t, IsValidTarget("_new"))
	assert.NoError(t, ItemKind.Validate())
}
