package handler

import (
	"errors"
	"fmt"
	"net/http"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/shared/response"
	"cms-backend/internal/shared/utils"
	"cms-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ScopeFunc trích scope từ request: ?type=post cho category, :id của menu cho menu item
type ScopeFunc func(c *gin.Context) (hierarchy.Scope, error)

type Config struct {
	// Resource dùng trong message response ("category", "menu item")
	Resource string

	// IDParam là tên path param của node, mặc định "id"
	IDParam string

	Scope ScopeFunc
}

// TreeHandler expose một EntityService qua REST, generic theo DTO của từng kind
type TreeHandler[C CreateRequest, U UpdateRequest] struct {
	service hierarchy.EntityService
	cfg     Config
}

func NewTreeHandler[C CreateRequest, U UpdateRequest](svc hierarchy.EntityService, cfg Config) *TreeHandler[C, U] {
	if cfg.IDParam == "" {
		cfg.IDParam = "id"
	}
	if cfg.Resource == "" {
		cfg.Resource = svc.Kind().Name
	}
	if cfg.Scope == nil {
		cfg.Scope = func(*gin.Context) (hierarchy.Scope, error) { return hierarchy.Scope{}, nil }
	}
	return &TreeHandler[C, U]{service: svc, cfg: cfg}
}

// Register gắn routes vào group. Route ghi chạy qua guards (auth + admin).
func (h *TreeHandler[C, U]) Register(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	p := "/:" + h.cfg.IDParam

	rg.GET("/tree", h.Tree)
	rg.GET("/by-slug/:slug", h.GetBySlug)
	rg.GET("/children", h.ListChildren)
	rg.GET(p, h.Get)
	rg.GET(p+"/children", h.Children)
	rg.GET(p+"/breadcrumb", h.Breadcrumb)

	write := rg.Group("", guards...)
	write.POST("", h.Create)
	write.PUT("/reorder", h.Reorder)
	write.PUT(p, h.Update)
	write.DELETE(p, h.Delete)
}

// ========== GET /tree ==========
func (h *TreeHandler[C, U]) Tree(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	forest, err := h.service.FindTree(c.Request.Context(), scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s tree successfully", h.cfg.Resource), forest)
}

// ========== GET /:id ==========
func (h *TreeHandler[C, U]) Get(c *gin.Context) {
	node, ok := h.loadInScope(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s successfully", h.cfg.Resource), node)
}

// ========== GET /by-slug/:slug ==========
func (h *TreeHandler[C, U]) GetBySlug(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	node, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err == nil && !inScope(node, scope) {
		err = hierarchy.ErrNotFound
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s successfully", h.cfg.Resource), node)
}

// ========== GET /:id/children ==========
func (h *TreeHandler[C, U]) Children(c *gin.Context) {
	node, ok := h.loadInScope(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s children successfully", h.cfg.Resource), node.Children)
}

// ========== GET /children?parent_id= ==========
// Không có parent_id → trả về các root
func (h *TreeHandler[C, U]) ListChildren(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	parentID, err := utils.ParseOptionalID(c.Query("parent_id"))
	if err != nil {
		response.BadRequest(c, "Invalid parent_id", gin.H{"parent_id": err.Error()})
		return
	}

	children, err := h.service.Children(c.Request.Context(), parentID, scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s children successfully", h.cfg.Resource), children)
}

// ========== GET /:id/breadcrumb ==========
func (h *TreeHandler[C, U]) Breadcrumb(c *gin.Context) {
	node, ok := h.loadInScope(c)
	if !ok {
		return
	}

	chain, err := h.service.Breadcrumb(c.Request.Context(), node.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Get %s breadcrumb successfully", h.cfg.Resource), chain)
}

// ========== POST / ==========
func (h *TreeHandler[C, U]) Create(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req C
	if !bindJSON(c, &req) || !validate(c, req) {
		return
	}

	in := req.ToInput()
	if scope.ScopeID != nil {
		in.ScopeID = scope.ScopeID
	}
	// ?type= là type mặc định, body không được mâu thuẫn với nó
	if scope.Type != "" {
		if in.Type == "" {
			in.Type = scope.Type
		} else if in.Type != scope.Type {
			h.fail(c, hierarchy.NewValidationError(hierarchy.ReasonTypeMismatch, "type %q does not match ?type=%s", in.Type, scope.Type))
			return
		}
	}

	node, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, fmt.Sprintf("Create %s successfully", h.cfg.Resource), node)
}

// ========== PUT /:id ==========
func (h *TreeHandler[C, U]) Update(c *gin.Context) {
	current, ok := h.loadInScope(c)
	if !ok {
		return
	}

	var req U
	if !bindJSON(c, &req) || !validate(c, req) {
		return
	}

	node, err := h.service.Update(c.Request.Context(), current.ID, req.ToFields())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Update %s successfully", h.cfg.Resource), node)
}

// ========== DELETE /:id ==========
func (h *TreeHandler[C, U]) Delete(c *gin.Context) {
	current, ok := h.loadInScope(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), current.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Delete %s successfully", h.cfg.Resource), nil)
}

// ========== PUT /reorder ==========
func (h *TreeHandler[C, U]) Reorder(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if !bindJSON(c, &req) || !validate(c, req) {
		return
	}

	items := req.ToItems()
	foreign := make([]int64, 0)

	// Item của menu khác coi như không tồn tại
	if scope.ScopeID != nil {
		owned := items[:0]
		for _, it := range items {
			node, err := h.service.Get(c.Request.Context(), it.ID)
			if err != nil && !errors.Is(err, hierarchy.ErrNotFound) {
				h.fail(c, err)
				return
			}
			if err != nil || !inScope(node, scope) {
				foreign = append(foreign, it.ID)
				continue
			}
			owned = append(owned, it)
		}
		items = owned
	}

	result, err := h.service.Reorder(c.Request.Context(), items)
	if err != nil {
		h.fail(c, err)
		return
	}
	result.Skipped = append(foreign, result.Skipped...)

	response.Success(c, http.StatusOK, fmt.Sprintf("Reorder %s successfully", h.cfg.Resource), result)
}

// ========== HELPERS ==========

func (h *TreeHandler[C, U]) scope(c *gin.Context) (hierarchy.Scope, bool) {
	scope, err := h.cfg.Scope(c)
	if err != nil {
		h.fail(c, err)
		return hierarchy.Scope{}, false
	}
	return scope, true
}

func (h *TreeHandler[C, U]) loadInScope(c *gin.Context) (*hierarchy.Node, bool) {
	scope, ok := h.scope(c)
	if !ok {
		return nil, false
	}

	id, err := utils.ParseID(c.Param(h.cfg.IDParam))
	if err != nil {
		response.BadRequest(c, "Invalid id", gin.H{h.cfg.IDParam: err.Error()})
		return nil, false
	}

	node, err := h.service.Get(c.Request.Context(), id)
	if err == nil && !inScope(node, scope) {
		err = hierarchy.ErrNotFound
	}
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return node, true
}

func (h *TreeHandler[C, U]) fail(c *gin.Context, err error) {
	status := hierarchy.GetHTTPStatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Error(fmt.Sprintf("%s %s failed", c.Request.Method, c.FullPath()), err)
	}

	var details interface{}
	if reason, ok := hierarchy.ReasonOf(err); ok {
		details = gin.H{"reason": reason}
	}
	response.Error(c, status, hierarchy.ErrorCode(err), hierarchy.GetErrorMessage(err), details)
}

// Type filter không áp dụng ở đây: node lấy theo id luôn hợp lệ với mọi type
func inScope(node *hierarchy.Node, scope hierarchy.Scope) bool {
	if scope.ScopeID == nil {
		return true
	}
	return node.ScopeID != nil && *node.ScopeID == *scope.ScopeID
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

func validate(c *gin.Context, req validation.Validatable) bool {
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return false
	}
	return true
}
