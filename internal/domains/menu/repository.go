package menu

import "context"

// Repository - persistence của menu. Item do hierarchy repository quản lý.
type Repository interface {
	Create(ctx context.Context, m *Menu) (*Menu, error)
	GetByID(ctx context.Context, id int64) (*Menu, error)
	GetBySlug(ctx context.Context, slug string) (*Menu, error)
	GetByLocation(ctx context.Context, location string) (*Menu, error)
	List(ctx context.Context) ([]*Menu, error)
	Update(ctx context.Context, id int64, patch MenuPatch) (*Menu, error)

	// Delete xóa menu cùng toàn bộ item trong một transaction, trả về số item đã xóa
	Delete(ctx context.Context, id int64) (int64, error)

	ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error)
}
