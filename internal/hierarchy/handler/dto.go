package handler

import (
	"cms-backend/internal/hierarchy"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateRequest là body của POST, mỗi entity kind có DTO riêng
type CreateRequest interface {
	validation.Validatable
	ToInput() hierarchy.CreateInput
}

// UpdateRequest là body của PUT /:id. Field không gửi thì không đụng tới.
type UpdateRequest interface {
	validation.Validatable
	ToFields() hierarchy.Fields
}

// ReorderRequest - PUT /reorder
//
//	Body: {
//	  "items": [
//	    {"id": 3, "sort_order": 0},
//	    {"id": 5, "sort_order": 1, "parent_id": null}
//	  ]
//	}
type ReorderRequest struct {
	Items []ReorderItemRequest `json:"items"`
}

type ReorderItemRequest struct {
	ID        int64                `json:"id"`
	SortOrder int                  `json:"sort_order"`
	ParentID  hierarchy.NullableID `json:"parent_id"`
}

const maxReorderItems = 500

func (r ReorderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required, validation.Length(1, maxReorderItems)),
	)
}

func (r ReorderItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.SortOrder, validation.Min(0)),
	)
}

func (r ReorderRequest) ToItems() []hierarchy.ReorderItem {
	items := make([]hierarchy.ReorderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, hierarchy.ReorderItem{
			ID:        it.ID,
			SortOrder: it.SortOrder,
			Parent:    it.ParentID.Ref(),
		})
	}
	return items
}
