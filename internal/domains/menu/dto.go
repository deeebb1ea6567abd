package menu

import (
	"regexp"

	"cms-backend/internal/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var locationPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// CreateMenuReq - POST /api/v1/menus
//
//	Body: {"name": "Menu chính", "location": "header"}
type CreateMenuReq struct {
	Name        string  `json:"name"`
	Slug        *string `json:"slug"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r CreateMenuReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Location, validation.NilOrNotEmpty, validation.Length(1, 50), validation.Match(locationPattern)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

// UpdateMenuReq - PUT /api/v1/menus/:id. "location": "" bỏ gắn location.
type UpdateMenuReq struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r UpdateMenuReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Location, validation.Length(0, 50), validation.Match(locationPattern)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

func (r UpdateMenuReq) ToPatch() MenuPatch {
	return MenuPatch{
		Name:        r.Name,
		Slug:        r.Slug,
		Location:    r.Location,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

// CreateMenuItemReq - POST /api/v1/menus/:id/items. menu_id lấy từ path.
//
//	Body: {"name": "Giới thiệu", "url": "/about", "parent_id": 3, "target": "_self"}
type CreateMenuItemReq struct {
	Name      string  `json:"name"`
	Slug      *string `json:"slug"`
	ParentID  *int64  `json:"parent_id"`
	URL       *string `json:"url"`
	Target    string  `json:"target"`
	CSSClass  *string `json:"css_class"`
	Icon      *string `json:"icon"`
	IsActive  *bool   `json:"is_active"`
	SortOrder int     `json:"sort_order"`
}

func (r CreateMenuItemReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.URL, validation.Length(0, 500)),
		validation.Field(&r.Target, validation.In(validTargets...)),
		validation.Field(&r.CSSClass, validation.Length(0, 100)),
		validation.Field(&r.Icon, validation.Length(0, 100)),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(9999)),
	)
}

func (r CreateMenuItemReq) ToInput() hierarchy.CreateInput {
	target := r.Target
	if target == "" {
		target = TargetSelf
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	attrs := map[string]any{"target": target, "is_active": active}
	if r.URL != nil {
		attrs["url"] = *r.URL
	}
	if r.CSSClass != nil {
		attrs["css_class"] = *r.CSSClass
	}
	if r.Icon != nil {
		attrs["icon"] = *r.Icon
	}

	return hierarchy.CreateInput{
		Name:       r.Name,
		Slug:       r.Slug,
		ParentID:   r.ParentID,
		SortOrder:  r.SortOrder,
		Attributes: attrs,
	}
}

// UpdateMenuItemReq - PUT /api/v1/menus/:id/items/:item_id
type UpdateMenuItemReq struct {
	Name      *string              `json:"name"`
	Slug      *string              `json:"slug"`
	ParentID  hierarchy.NullableID `json:"parent_id"`
	URL       *string              `json:"url"`
	Target    *string              `json:"target"`
	CSSClass  *string              `json:"css_class"`
	Icon      *string              `json:"icon"`
	IsActive  *bool                `json:"is_active"`
	SortOrder *int                 `json:"sort_order"`
}

func (r UpdateMenuItemReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.URL, validation.Length(0, 500)),
		validation.Field(&r.Target, validation.NilOrNotEmpty, validation.In(validTargets...)),
		validation.Field(&r.CSSClass, validation.Length(0, 100)),
		validation.Field(&r.Icon, validation.Length(0, 100)),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(9999)),
	)
}

func (r UpdateMenuItemReq) ToFields() hierarchy.Fields {
	attrs := make(map[string]any)
	if r.URL != nil {
		attrs["url"] = *r.URL
	}
	if r.Target != nil {
		attrs["target"] = *r.Target
	}
	if r.CSSClass != nil {
		attrs["css_class"] = *r.CSSClass
	}
	if r.Icon != nil {
		attrs["icon"] = *r.Icon
	}
	if r.IsActive != nil {
		attrs["is_active"] = *r.IsActive
	}

	return hierarchy.Fields{
		Name:       r.Name,
		Slug:       r.Slug,
		SortOrder:  r.SortOrder,
		Parent:     r.ParentID.Ref(),
		Attributes: attrs,
	}
}
