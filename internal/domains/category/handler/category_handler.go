package handler

import (
	"cms-backend/internal/domains/category"
	"cms-backend/internal/hierarchy"
	tree "cms-backend/internal/hierarchy/handler"

	"github.com/gin-gonic/gin"
)

type CategoryHandler = tree.TreeHandler[category.CreateCategoryReq, category.UpdateCategoryReq]

// NewCategoryHandler - routes /categories, lọc theo ?type=post|product
func NewCategoryHandler(svc hierarchy.EntityService) *CategoryHandler {
	return tree.NewTreeHandler[category.CreateCategoryReq, category.UpdateCategoryReq](svc, tree.Config{
		Resource: "category",
		Scope:    typeScope,
	})
}

func typeScope(c *gin.Context) (hierarchy.Scope, error) {
	t := c.Query("type")
	if t != "" && !category.Kind.HasType(t) {
		return hierarchy.Scope{}, hierarchy.NewValidationError(hierarchy.ReasonInvalidType, "type must be one of: post, product")
	}
	return hierarchy.Scope{Type: t}, nil
}
