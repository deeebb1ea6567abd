package hierarchy

import (
	"context"
	"errors"
	"fmt"
)

// Reader là phần Repository mà Guard cần
type Reader interface {
	FindByID(ctx context.Context, id int64) (*Node, error)
	FindByParentIDs(ctx context.Context, ids []int64) ([]*Node, error)
}

// Guard giữ invariant không có chu trình và parent phải tồn tại
type Guard struct {
	repo Reader
}

func NewGuard(repo Reader) *Guard {
	return &Guard{repo: repo}
}

// Descendants trả về toàn bộ con cháu của id (không gồm id) theo thứ tự BFS.
// Mỗi tầng một query. visited chặn vòng lặp nếu dữ liệu đã bị hỏng.
func (g *Guard) Descendants(ctx context.Context, id int64) ([]int64, error) {
	visited := map[int64]struct{}{id: {}}
	result := make([]int64, 0)

	frontier := []int64{id}
	for len(frontier) > 0 {
		children, err := g.repo.FindByParentIDs(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("load descendants of %d: %w", id, err)
		}

		next := make([]int64, 0, len(children))
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			result = append(result, child.ID)
			next = append(next, child.ID)
		}
		frontier = next
	}

	return result, nil
}

func (g *Guard) DescendantSet(ctx context.Context, id int64) (map[int64]struct{}, error) {
	ids, err := g.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, d := range ids {
		set[d] = struct{}{}
	}
	return set, nil
}

// ValidateParentAssignment kiểm tra việc gán candidate làm parent của nodeID.
// nodeID == 0 nghĩa là node chưa tồn tại (create), chỉ kiểm tra parent có thật.
// scope.ScopeID != nil: parent phải cùng owning entity (menu).
// Trả về parent node để caller kiểm tra tiếp (type tag).
func (g *Guard) ValidateParentAssignment(ctx context.Context, nodeID int64, candidate *int64, scope Scope) (*Node, error) {
	if candidate == nil {
		return nil, nil
	}

	if nodeID != 0 && *candidate == nodeID {
		return nil, ErrSelfParent
	}

	parent, err := g.repo.FindByID(ctx, *candidate)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrParentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load parent %d: %w", *candidate, err)
	}

	if scope.ScopeID != nil && (parent.ScopeID == nil || *parent.ScopeID != *scope.ScopeID) {
		return nil, ErrParentNotFound
	}

	if nodeID != 0 {
		descendants, err := g.DescendantSet(ctx, nodeID)
		if err != nil {
			return nil, err
		}
		if _, ok := descendants[*candidate]; ok {
			return nil, ErrCyclicParent
		}
	}

	return parent, nil
}

// Ancestors trả chuỗi từ root xuống tới id (gồm cả id), dùng cho breadcrumb
func (g *Guard) Ancestors(ctx context.Context, id int64) ([]*Node, error) {
	node, err := g.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []*Node{node}
	visited := map[int64]struct{}{node.ID: {}}
	for node.ParentID != nil {
		if _, seen := visited[*node.ParentID]; seen {
			break
		}
		parent, err := g.repo.FindByID(ctx, *node.ParentID)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load ancestor %d: %w", *node.ParentID, err)
		}
		visited[parent.ID] = struct{}{}
		chain = append(chain, parent)
		node = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
