package productcategory

import "cms-backend/internal/hierarchy"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Kind: danh mục sản phẩm, bảng riêng, không có type tag
var Kind = hierarchy.Kind{
	Name:       "product_category",
	Table:      "product_categories",
	Attributes: []string{"description", "status", "image_id"},
	Policy:     hierarchy.Reparent,
}
