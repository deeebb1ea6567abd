package handler

import (
	"cms-backend/internal/domains/productcategory"
	"cms-backend/internal/hierarchy"
	tree "cms-backend/internal/hierarchy/handler"
)

type ProductCategoryHandler = tree.TreeHandler[productcategory.CreateProductCategoryReq, productcategory.UpdateProductCategoryReq]

func NewProductCategoryHandler(svc hierarchy.EntityService) *ProductCategoryHandler {
	return tree.NewTreeHandler[productcategory.CreateProductCategoryReq, productcategory.UpdateProductCategoryReq](svc, tree.Config{
		Resource: "product category",
	})
}
