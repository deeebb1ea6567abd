package hierarchy

import "context"

// Predicate chọn các dòng cho UpdateMany. Hiện chỉ hỗ trợ lọc theo parent.
type Predicate struct {
	ParentID *int64
}

func ChildrenOf(id int64) Predicate {
	return Predicate{ParentID: &id}
}

// Repository là persistence collaborator của một Kind.
// Mọi method trả ErrNotFound khi id không tồn tại.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Node, error)
	FindBySlug(ctx context.Context, slug string) (*Node, error)

	// FindByParent: parentID nil = root nodes
	FindByParent(ctx context.Context, parentID *int64, scope Scope) ([]*Node, error)

	// FindByParentIDs trả con trực tiếp của tất cả ids trong một query
	// (Guard dùng để duyệt mỗi tầng một query)
	FindByParentIDs(ctx context.Context, ids []int64) ([]*Node, error)

	FindAll(ctx context.Context, scope Scope) ([]*Node, error)

	ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error)

	// Insert trả về node vừa ghi với id và timestamps do DB sinh
	Insert(ctx context.Context, node *Node) (*Node, error)

	UpdateFields(ctx context.Context, id int64, fields Fields) error
	UpdateMany(ctx context.Context, where Predicate, fields Fields) (int64, error)

	DeleteByID(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// RunInTransaction chạy fn với một Repository gắn vào cùng transaction.
	// fn trả error → rollback toàn bộ.
	RunInTransaction(ctx context.Context, fn func(repo Repository) error) error
}
