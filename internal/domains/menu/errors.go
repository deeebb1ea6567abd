package menu

import (
	"fmt"

	"cms-backend/internal/hierarchy"
)

// Lỗi của menu bọc sentinel của hierarchy để dùng chung mapping HTTP status
var (
	ErrMenuNotFound  = fmt.Errorf("menu not found: %w", hierarchy.ErrNotFound)
	ErrDuplicateSlug = fmt.Errorf("menu slug already exists: %w", hierarchy.ErrConflict)
	ErrLocationTaken = fmt.Errorf("menu location already in use: %w", hierarchy.ErrConflict)
	ErrInvalidName   = hierarchy.NewValidationError(hierarchy.ReasonInvalidName, "menu name is required")
)
