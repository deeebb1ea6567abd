package category

import "cms-backend/internal/hierarchy"

// Category types dùng chung bảng categories
const (
	TypePost    = "post"
	TypeProduct = "product"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Kind: categories là cây có type tag, xóa node thì con được đưa lên parent
var Kind = hierarchy.Kind{
	Name:       "category",
	Table:      "categories",
	TypeColumn: "type",
	Types:      []string{TypePost, TypeProduct},
	Attributes: []string{"description", "status", "image_id"},
	Policy:     hierarchy.Reparent,
}
