package category

import (
	"cms-backend/internal/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateCategoryReq là request body khi POST /api/v1/categories
//
//	Body: {
//	  "name": "Tin công nghệ",
//	  "type": "post",
//	  "parent_id": 1,
//	  "description": "...",
//	  "sort_order": 1
//	}
type CreateCategoryReq struct {
	Name        string  `json:"name"`
	Slug        *string `json:"slug"`
	ParentID    *int64  `json:"parent_id"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	ImageID     *int64  `json:"image_id"`
	SortOrder   int     `json:"sort_order"`
}

func (r CreateCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.Type, validation.In(TypePost, TypeProduct)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Status, validation.In(StatusActive, StatusInactive)),
		validation.Field(&r.ImageID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(9999)),
	)
}

func (r CreateCategoryReq) ToInput() hierarchy.CreateInput {
	status := r.Status
	if status == "" {
		status = StatusActive
	}

	attrs := map[string]any{"status": status}
	if r.Description != nil {
		attrs["description"] = *r.Description
	}
	if r.ImageID != nil {
		attrs["image_id"] = *r.ImageID
	}

	return hierarchy.CreateInput{
		Name:       r.Name,
		Slug:       r.Slug,
		ParentID:   r.ParentID,
		SortOrder:  r.SortOrder,
		Type:       r.Type,
		Attributes: attrs,
	}
}

// UpdateCategoryReq - PUT /api/v1/categories/:id
// Partial update: field nil = không update. Type không đổi được sau khi tạo.
// "parent_id": null chuyển category lên root.
type UpdateCategoryReq struct {
	Name        *string              `json:"name"`
	Slug        *string              `json:"slug"`
	ParentID    hierarchy.NullableID `json:"parent_id"`
	Description *string              `json:"description"`
	Status      *string              `json:"status"`
	ImageID     *int64               `json:"image_id"`
	SortOrder   *int                 `json:"sort_order"`
}

func (r UpdateCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(StatusActive, StatusInactive)),
		validation.Field(&r.ImageID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.SortOrder, validation.Min(0), validation.Max(9999)),
	)
}

func (r UpdateCategoryReq) ToFields() hierarchy.Fields {
	attrs := make(map[string]any)
	if r.Description != nil {
		attrs["description"] = *r.Description
	}
	if r.Status != nil {
		attrs["status"] = *r.Status
	}
	if r.ImageID != nil {
		attrs["image_id"] = *r.ImageID
	}

	return hierarchy.Fields{
		Name:       r.Name,
		Slug:       r.Slug,
		SortOrder:  r.SortOrder,
		Parent:     r.ParentID.Ref(),
		Attributes: attrs,
	}
}
