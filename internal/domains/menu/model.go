package menu

import (
	"time"

	"cms-backend/internal/hierarchy"
)

// Menu sở hữu các menu item. Xóa menu thì xóa luôn toàn bộ item của nó.
type Menu struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Location    *string   `json:"location,omitempty"` // header, footer, sidebar...
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MenuPatch - field nil = không update. Location "" = bỏ gắn location.
type MenuPatch struct {
	Name        *string
	Slug        *string
	Location    *string
	Description *string
	IsActive    *bool
}

func (p MenuPatch) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Location == nil && p.Description == nil && p.IsActive == nil
}

// MenuTree là menu kèm cây item đã materialize
type MenuTree struct {
	*Menu
	Items []*hierarchy.TreeNode `json:"items"`
}

// Link targets của menu item
const (
	TargetSelf   = "_self"
	TargetBlank  = "_blank"
	TargetParent = "_parent"
	TargetTop    = "_top"
)

var validTargets = []interface{}{TargetSelf, TargetBlank, TargetParent, TargetTop}

func IsValidTarget(t string) bool {
	for _, v := range validTargets {
		if v == t {
			return true
		}
	}
	return false
}

// ItemKind: menu_items thuộc về một menu, cột tên là title, xóa item thì xóa cả subtree
var ItemKind = hierarchy.Kind{
	Name:        "menu_item",
	Table:       "menu_items",
	NameColumn:  "title",
	ScopeColumn: "menu_id",
	Attributes:  []string{"url", "target", "css_class", "icon", "is_active"},
	Policy:      hierarchy.Cascade,
}
