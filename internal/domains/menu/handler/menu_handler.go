package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cms-backend/internal/domains/menu"
	"cms-backend/internal/hierarchy"
	tree "cms-backend/internal/hierarchy/handler"
	"cms-backend/internal/shared/response"
	"cms-backend/internal/shared/utils"
	"cms-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MenuService interface {
	Create(ctx context.Context, req menu.CreateMenuReq) (*menu.Menu, error)
	Get(ctx context.Context, id int64) (*menu.Menu, error)
	List(ctx context.Context) ([]*menu.Menu, error)
	Update(ctx context.Context, id int64, patch menu.MenuPatch) (*menu.Menu, error)
	Delete(ctx context.Context, id int64) error
	Tree(ctx context.Context, id int64) (*menu.MenuTree, error)
	TreeByLocation(ctx context.Context, location string) (*menu.MenuTree, error)
}

type MenuItemHandler = tree.TreeHandler[menu.CreateMenuItemReq, menu.UpdateMenuItemReq]

type MenuHandler struct {
	service MenuService
	items   *MenuItemHandler
}

func NewMenuHandler(svc MenuService, items hierarchy.EntityService) *MenuHandler {
	h := &MenuHandler{service: svc}
	h.items = tree.NewTreeHandler[menu.CreateMenuItemReq, menu.UpdateMenuItemReq](items, tree.Config{
		Resource: "menu item",
		IDParam:  "item_id",
		Scope:    h.menuScope,
	})
	return h
}

// Register gắn /menus và /menus/:id/items
func (h *MenuHandler) Register(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/location/:location/tree", h.TreeByLocation)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/tree", h.Tree)

	write := rg.Group("", guards...)
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)

	h.items.Register(rg.Group("/:id/items"), guards...)
}

// ========== GET /menus ==========
func (h *MenuHandler) List(c *gin.Context) {
	menus, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Get menus successfully", menus)
}

// ========== GET /menus/:id ==========
func (h *MenuHandler) Get(c *gin.Context) {
	id, ok := parseMenuID(c)
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Get menu successfully", m)
}

// ========== GET /menus/:id/tree ==========
func (h *MenuHandler) Tree(c *gin.Context) {
	id, ok := parseMenuID(c)
	if !ok {
		return
	}

	t, err := h.service.Tree(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Get menu tree successfully", t)
}

// ========== GET /menus/location/:location/tree ==========
func (h *MenuHandler) TreeByLocation(c *gin.Context) {
	t, err := h.service.TreeByLocation(c.Request.Context(), c.Param("location"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Get menu tree successfully", t)
}

// ========== POST /menus ==========
func (h *MenuHandler) Create(c *gin.Context) {
	var req menu.CreateMenuReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	m, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Create menu successfully", m)
}

// ========== PUT /menus/:id ==========
func (h *MenuHandler) Update(c *gin.Context) {
	id, ok := parseMenuID(c)
	if !ok {
		return
	}

	var req menu.UpdateMenuReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Update menu successfully", m)
}

// ========== DELETE /menus/:id ==========
func (h *MenuHandler) Delete(c *gin.Context) {
	id, ok := parseMenuID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Delete menu successfully", nil)
}

// menuScope: item chỉ truy cập được qua menu còn tồn tại
func (h *MenuHandler) menuScope(c *gin.Context) (hierarchy.Scope, error) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return hierarchy.Scope{}, hierarchy.NewValidationError(hierarchy.ReasonScopeRequired, "invalid menu id")
	}
	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		return hierarchy.Scope{}, err
	}
	return hierarchy.Scope{ScopeID: &id}, nil
}

func parseMenuID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid id", gin.H{"id": err.Error()})
		return 0, false
	}
	return id, true
}

func (h *MenuHandler) fail(c *gin.Context, err error) {
	status := hierarchy.GetHTTPStatusCode(err)
	message := hierarchy.GetErrorMessage(err)

	switch {
	case errors.Is(err, menu.ErrMenuNotFound):
		message = "Menu not found"
	case errors.Is(err, menu.ErrDuplicateSlug):
		message = "Menu slug already exists"
	case errors.Is(err, menu.ErrLocationTaken):
		message = "Menu location already in use"
	case status == http.StatusInternalServerError:
		logger.Error(fmt.Sprintf("%s %s failed", c.Request.Method, c.FullPath()), err)
	}

	var details interface{}
	if reason, ok := hierarchy.ReasonOf(err); ok {
		details = gin.H{"reason": reason}
	}
	response.Error(c, status, hierarchy.ErrorCode(err), message, details)
}
