// Package memstore là Repository in-memory dùng trong test.
// Unique slug và parent FK được kiểm tra như index/constraint của Postgres.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"cms-backend/internal/hierarchy"
)

type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	nodes  map[int64]*hierarchy.Node
	nextID int64
	now    func() time.Time
	inTx   bool
}

func New() *Store {
	return &Store{
		nodes:  make(map[int64]*hierarchy.Node),
		nextID: 1,
		now:    time.Now,
	}
}

// Seed ghi thẳng node (giữ nguyên id), không kiểm tra gì. Dùng để dựng dữ liệu hỏng trong test.
func (s *Store) Seed(nodes ...*hierarchy.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		c := clone(n)
		if c.ID == 0 {
			c.ID = s.nextID
		}
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		s.nodes[c.ID] = c
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, hierarchy.ErrNotFound
	}
	return clone(n), nil
}

func (s *Store) FindBySlug(ctx context.Context, slug string) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.nodes {
		if n.Slug == slug {
			return clone(n), nil
		}
	}
	return nil, hierarchy.ErrNotFound
}

func (s *Store) FindByParent(ctx context.Context, parentID *int64, scope hierarchy.Scope) ([]*hierarchy.Node, error) {
	return s.filter(func(n *hierarchy.Node) bool {
		return sameParent(n.ParentID, parentID) && inScope(n, scope)
	}), nil
}

func (s *Store) FindByParentIDs(ctx context.Context, ids []int64) ([]*hierarchy.Node, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return s.filter(func(n *hierarchy.Node) bool {
		if n.ParentID == nil {
			return false
		}
		_, ok := want[*n.ParentID]
		return ok
	}), nil
}

func (s *Store) FindAll(ctx context.Context, scope hierarchy.Scope) ([]*hierarchy.Node, error) {
	return s.filter(func(n *hierarchy.Node) bool { return inScope(n, scope) }), nil
}

func (s *Store) ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slugTaken(slug, excludeID), nil
}

func (s *Store) Insert(ctx context.Context, node *hierarchy.Node) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(node.Slug, nil) {
		return nil, hierarchy.ErrDuplicateSlug
	}
	if node.ParentID != nil {
		if _, ok := s.nodes[*node.ParentID]; !ok {
			return nil, hierarchy.ErrParentNotFound
		}
	}

	c := clone(node)
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	c.Parent = nil
	c.Children = nil
	s.nodes[c.ID] = c
	return clone(c), nil
}

func (s *Store) UpdateFields(ctx context.Context, id int64, fields hierarchy.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return hierarchy.ErrNotFound
	}
	if err := s.checkFields(fields, &id); err != nil {
		return err
	}
	s.apply(n, fields)
	return nil
}

func (s *Store) UpdateMany(ctx context.Context, where hierarchy.Predicate, fields hierarchy.Fields) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFields(fields, nil); err != nil {
		return 0, err
	}

	var count int64
	for _, n := range s.nodes {
		if where.ParentID != nil && !sameParent(n.ParentID, where.ParentID) {
			continue
		}
		s.apply(n, fields)
		count++
	}
	return count, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return hierarchy.ErrNotFound
	}
	delete(s.nodes, id)
	return nil
}

func (s *Store) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, id := range ids {
		if _, ok := s.nodes[id]; ok {
			delete(s.nodes, id)
			count++
		}
	}
	return count, nil
}

// RunInTransaction chạy fn trên bản sao; fn lỗi thì bản sao bị bỏ.
// Các transaction được tuần tự hóa.
func (s *Store) RunInTransaction(ctx context.Context, fn func(repo hierarchy.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	tx := &Store{
		nodes:  make(map[int64]*hierarchy.Node, len(s.nodes)),
		nextID: s.nextID,
		now:    s.now,
		inTx:   true,
	}
	for id, n := range s.nodes {
		tx.nodes[id] = clone(n)
	}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.nodes = tx.nodes
	s.nextID = tx.nextID
	s.mu.Unlock()
	return nil
}

func (s *Store) filter(keep func(n *hierarchy.Node) bool) []*hierarchy.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*hierarchy.Node, 0)
	for _, n := range s.nodes {
		if keep(n) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) slugTaken(slug string, excludeID *int64) bool {
	for id, n := range s.nodes {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if n.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) checkFields(fields hierarchy.Fields, id *int64) error {
	if fields.Slug != nil && s.slugTaken(*fields.Slug, id) {
		return hierarchy.ErrDuplicateSlug
	}
	if fields.Parent != nil && fields.Parent.ID != nil {
		if _, ok := s.nodes[*fields.Parent.ID]; !ok {
			return hierarchy.ErrParentNotFound
		}
	}
	return nil
}

func (s *Store) apply(n *hierarchy.Node, fields hierarchy.Fields) {
	if fields.Name != nil {
		n.Name = *fields.Name
	}
	if fields.Slug != nil {
		n.Slug = *fields.Slug
	}
	if fields.SortOrder != nil {
		n.SortOrder = *fields.SortOrder
	}
	if fields.Parent != nil {
		n.ParentID = copyID(fields.Parent.ID)
	}
	if len(fields.Attributes) > 0 {
		if n.Attributes == nil {
			n.Attributes = make(map[string]any, len(fields.Attributes))
		}
		for k, v := range fields.Attributes {
			n.Attributes[k] = v
		}
	}
	n.UpdatedAt = s.now()
}

func inScope(n *hierarchy.Node, scope hierarchy.Scope) bool {
	if scope.Type != "" && n.Type != scope.Type {
		return false
	}
	if scope.ScopeID != nil && (n.ScopeID == nil || *n.ScopeID != *scope.ScopeID) {
		return false
	}
	return true
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func clone(n *hierarchy.Node) *hierarchy.Node {
	c := *n
	c.ParentID = copyID(n.ParentID)
	c.ScopeID = copyID(n.ScopeID)
	if n.Attributes != nil {
		c.Attributes = make(map[string]any, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	c.Parent = nil
	c.Children = nil
	return &c
}
