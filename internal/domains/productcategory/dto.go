package productcategory

import (
	"cms-backend/internal/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateProductCategoryReq - POST /api/v1/product-categories
type CreateProductCategoryReq struct {
	Name        string  `json:"name"`
	Slug        *string `json:"slug"`
	ParentID    *int64  `json:"parent_id"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	ImageID     *int64  `json:"image_id"`
	SortOrder   int     `json:"sort_order"`
}

func (r CreateProductCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Status, validation.In(StatusActive, StatusInactive)),
		validation.Field(&r.ImageID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

func (r CreateProductCategoryReq) ToInput() hierarchy.CreateInput {
	attrs := map[string]any{"status": StatusActive}
	if r.Status != "" {
		attrs["status"] = r.Status
	}
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
		Attributes: attrs,
	}
}

// UpdateProductCategoryReq - PUT /api/v1/product-categories/:id
type UpdateProductCategoryReq struct {
	Name        *string              `json:"name"`
	Slug        *string              `json:"slug"`
	ParentID    hierarchy.NullableID `json:"parent_id"`
	Description *string              `json:"description"`
	Status      *string              `json:"status"`
	ImageID     *int64               `json:"image_id"`
	SortOrder   *int                 `json:"sort_order"`
}

func (r UpdateProductCategoryReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(StatusActive, StatusInactive)),
		validation.Field(&r.ImageID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

func (r UpdateProductCategoryReq) ToFields() hierarchy.Fields {
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
