package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cms-backend/internal/shared/utils"
	"cms-backend/pkg/cache"
	"cms-backend/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxCreateAttempts giới hạn số lần sinh lại slug khi insert thua race trên unique index
const maxCreateAttempts = 3

const defaultTreeTTL = 10 * time.Minute

var tracer = otel.Tracer("cms-backend/internal/hierarchy")

// EntityService là contract mà handler dùng, mỗi Kind một instance
type EntityService interface {
	Kind() Kind
	Create(ctx context.Context, in CreateInput) (*Node, error)
	Update(ctx context.Context, id int64, fields Fields) (*Node, error)
	Delete(ctx context.Context, id int64) error
	FindTree(ctx context.Context, scope Scope) ([]*TreeNode, error)
	Reorder(ctx context.Context, items []ReorderItem) (*ReorderResult, error)

	Get(ctx context.Context, id int64) (*Node, error)
	GetBySlug(ctx context.Context, slug string) (*Node, error)
	Children(ctx context.Context, parentID *int64, scope Scope) ([]*Node, error)
	Breadcrumb(ctx context.Context, id int64) ([]*Node, error)
}

type Service struct {
	kind  Kind
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
}

type Option func(*Service)

// WithCache bật cache cho FindTree. ttl <= 0 dùng mặc định.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(kind Kind, repo Repository, opts ...Option) (*Service, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("kind %s: repository is required", kind.Name)
	}

	s := &Service{kind: kind, repo: repo, ttl: defaultTreeTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Kind() Kind {
	return s.kind
}

// ========== CREATE ==========

func (s *Service) Create(ctx context.Context, in CreateInput) (*Node, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	node, err := s.prepareCreate(in)
	if err != nil {
		return nil, err
	}

	var explicitSlug string
	if in.Slug != nil {
		explicitSlug = utils.Slugify(*in.Slug)
		if explicitSlug == "" {
			return nil, ErrInvalidSlug
		}
	}

	var created *Node
	for attempt := 1; ; attempt++ {
		insertConflict := false

		err = s.repo.RunInTransaction(ctx, func(tx Repository) error {
			parent, err := NewGuard(tx).ValidateParentAssignment(ctx, 0, node.ParentID, Scope{ScopeID: node.ScopeID})
			if err != nil {
				return err
			}
			if err := s.checkParentType(parent, node.Type); err != nil {
				return err
			}

			if explicitSlug != "" {
				exists, err := tx.ExistsBySlug(ctx, explicitSlug, nil)
				if err != nil {
					return fmt.Errorf("check slug: %w", err)
				}
				if exists {
					return ErrDuplicateSlug
				}
				node.Slug = explicitSlug
			} else {
				slug, err := utils.GenerateSlugFromTitle(ctx, node.Name, tx.ExistsBySlug, nil)
				if err != nil {
					return mapSlugError(err)
				}
				node.Slug = slug
			}

			inserted, err := tx.Insert(ctx, node)
			if err != nil {
				insertConflict = errors.Is(err, ErrDuplicateSlug)
				return err
			}
			created = inserted
			return nil
		})

		if err == nil {
			break
		}
		if insertConflict && explicitSlug == "" && attempt < maxCreateAttempts {
			logger.Warn("slug race on insert, regenerating", map[string]interface{}{
				"kind":    s.kind.Name,
				"slug":    node.Slug,
				"attempt": attempt,
			})
			continue
		}
		return nil, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}

	s.Invalidate(ctx)

	logger.Info("node created", map[string]interface{}{
		"kind": s.kind.Name,
		"id":   created.ID,
		"slug": created.Slug,
	})
	return s.loadDetailed(ctx, s.repo, created)
}

func (s *Service) prepareCreate(in CreateInput) (*Node, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	node := &Node{
		Name:       name,
		ParentID:   in.ParentID,
		SortOrder:  in.SortOrder,
		Attributes: in.Attributes,
	}

	if s.kind.Typed() {
		node.Type = in.Type
		if node.Type == "" {
			node.Type = s.kind.Types[0]
		}
		if !s.kind.HasType(node.Type) {
			return nil, NewValidationError(ReasonInvalidType, "type must be one of: %s", strings.Join(s.kind.Types, ", "))
		}
	}

	if s.kind.Scoped() {
		if in.ScopeID == nil {
			return nil, ErrScopeRequired
		}
		node.ScopeID = in.ScopeID
	}

	if err := s.checkAttributes(in.Attributes); err != nil {
		return nil, err
	}
	return node, nil
}

// ========== UPDATE ==========

func (s *Service) Update(ctx context.Context, id int64, fields Fields) (*Node, error) {
	ctx, span := s.startSpan(ctx, "Update")
	defer span.End()

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		fields.Name = &name
	}
	if fields.Slug != nil {
		slug := utils.Slugify(*fields.Slug)
		if slug == "" {
			return nil, ErrInvalidSlug
		}
		fields.Slug = &slug
	}
	if err := s.checkAttributes(fields.Attributes); err != nil {
		return nil, err
	}

	var updated *Node
	err := s.repo.RunInTransaction(ctx, func(tx Repository) error {
		node, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		patch := Fields{SortOrder: fields.SortOrder, Attributes: fields.Attributes}

		// Đổi tên mà không gửi slug → sinh lại slug, bỏ qua chính node này
		if fields.Name != nil && *fields.Name != node.Name {
			patch.Name = fields.Name
			if fields.Slug == nil {
				slug, err := utils.GenerateSlugFromTitle(ctx, *fields.Name, tx.ExistsBySlug, &id)
				if err != nil {
					return mapSlugError(err)
				}
				if slug != node.Slug {
					patch.Slug = &slug
				}
			}
		}

		if fields.Slug != nil && *fields.Slug != node.Slug {
			exists, err := tx.ExistsBySlug(ctx, *fields.Slug, &id)
			if err != nil {
				return fmt.Errorf("check slug: %w", err)
			}
			if exists {
				return ErrDuplicateSlug
			}
			patch.Slug = fields.Slug
		}

		if fields.Parent != nil {
			parent, err := NewGuard(tx).ValidateParentAssignment(ctx, id, fields.Parent.ID, Scope{ScopeID: node.ScopeID})
			if err != nil {
				return err
			}
			if err := s.checkParentType(parent, node.Type); err != nil {
				return err
			}
			patch.Parent = fields.Parent
		}

		if !patch.IsEmpty() {
			if err := tx.UpdateFields(ctx, id, patch); err != nil {
				return err
			}
		}

		updated, err = tx.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.kind.Name, id, err)
	}

	s.Invalidate(ctx)
	return s.loadDetailed(ctx, s.repo, updated)
}

// ========== DELETE ==========

// Delete áp dụng policy của kind trong một transaction:
// Reparent đưa con trực tiếp lên parent của node, Cascade xóa cả subtree
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	var removed int64
	err := s.repo.RunInTransaction(ctx, func(tx Repository) error {
		node, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		switch s.kind.Policy {
		case Reparent:
			moved, err := tx.UpdateMany(ctx, ChildrenOf(id), Fields{Parent: ParentOf(node.ParentID)})
			if err != nil {
				return fmt.Errorf("reparent children: %w", err)
			}
			logger.Debug(fmt.Sprintf("%s %d: moved %d children up", s.kind.Name, id, moved))

			if err := tx.DeleteByID(ctx, id); err != nil {
				return err
			}
			removed = 1

		case Cascade:
			descendants, err := NewGuard(tx).Descendants(ctx, id)
			if err != nil {
				return err
			}
			ids := append([]int64{id}, descendants...)
			removed, err = tx.DeleteByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("delete subtree: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.kind.Name, id, err)
	}

	s.Invalidate(ctx)

	logger.Info("node deleted", map[string]interface{}{
		"kind":    s.kind.Name,
		"id":      id,
		"policy":  s.kind.Policy.String(),
		"removed": removed,
	})
	return nil
}

// ========== TREE ==========

func (s *Service) FindTree(ctx context.Context, scope Scope) ([]*TreeNode, error) {
	ctx, span := s.startSpan(ctx, "FindTree")
	defer span.End()

	if scope.Type != "" && !s.kind.HasType(scope.Type) {
		return nil, NewValidationError(ReasonInvalidType, "type must be one of: %s", strings.Join(s.kind.Types, ", "))
	}

	key := s.treeKey(scope)
	if s.cache != nil {
		var cached []*TreeNode
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Error("tree cache get failed", err)
		} else if found {
			return cached, nil
		}
	}

	nodes, err := s.repo.FindAll(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load %s tree: %w", s.kind.Name, err)
	}
	forest := BuildForest(nodes)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, forest, s.ttl); err != nil {
			logger.Error("tree cache set failed", err)
		}
	}
	return forest, nil
}

// ========== REORDER ==========

// Reorder ghi sort_order (và parent nếu có) cho cả batch trong một transaction.
// Đổi parent đi qua Guard; một item lỗi validation thì rollback toàn batch.
// Id không tồn tại được bỏ qua và trả về trong Skipped.
func (s *Service) Reorder(ctx context.Context, items []ReorderItem) (*ReorderResult, error) {
	ctx, span := s.startSpan(ctx, "Reorder")
	defer span.End()

	result := &ReorderResult{Skipped: make([]int64, 0)}
	if len(items) == 0 {
		return result, nil
	}

	err := s.repo.RunInTransaction(ctx, func(tx Repository) error {
		guard := NewGuard(tx)
		for _, item := range items {
			node, err := tx.FindByID(ctx, item.ID)
			if errors.Is(err, ErrNotFound) {
				result.Skipped = append(result.Skipped, item.ID)
				continue
			}
			if err != nil {
				return err
			}

			sortOrder := item.SortOrder
			patch := Fields{SortOrder: &sortOrder}

			if item.Parent != nil {
				parent, err := guard.ValidateParentAssignment(ctx, item.ID, item.Parent.ID, Scope{ScopeID: node.ScopeID})
				if err != nil {
					return fmt.Errorf("item %d: %w", item.ID, err)
				}
				if err := s.checkParentType(parent, node.Type); err != nil {
					return fmt.Errorf("item %d: %w", item.ID, err)
				}
				patch.Parent = item.Parent
			}

			if err := tx.UpdateFields(ctx, item.ID, patch); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reorder %s: %w", s.kind.Name, err)
	}

	if result.Updated > 0 {
		s.Invalidate(ctx)
	}
	return result, nil
}

// ========== READS ==========

func (s *Service) Get(ctx context.Context, id int64) (*Node, error) {
	node, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadDetailed(ctx, s.repo, node)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Node, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}
	node, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.loadDetailed(ctx, s.repo, node)
}

func (s *Service) Children(ctx context.Context, parentID *int64, scope Scope) ([]*Node, error) {
	if parentID != nil {
		if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	children, err := s.repo.FindByParent(ctx, parentID, scope)
	if err != nil {
		return nil, err
	}
	SortSiblings(children)
	return children, nil
}

// Breadcrumb: root → ... → node
func (s *Service) Breadcrumb(ctx context.Context, id int64) ([]*Node, error) {
	return NewGuard(s.repo).Ancestors(ctx, id)
}

// ========== HELPERS ==========

func (s *Service) loadDetailed(ctx context.Context, repo Repository, node *Node) (*Node, error) {
	if node.ParentID != nil {
		parent, err := repo.FindByID(ctx, *node.ParentID)
		switch {
		case err == nil:
			node.Parent = parent
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	children, err := repo.FindByParent(ctx, &node.ID, Scope{})
	if err != nil {
		return nil, err
	}
	SortSiblings(children)
	node.Children = children
	return node, nil
}

func (s *Service) checkParentType(parent *Node, childType string) error {
	if parent == nil || !s.kind.Typed() {
		return nil
	}
	if parent.Type != childType {
		return NewValidationError(ReasonTypeMismatch, "parent type %q does not match %q", parent.Type, childType)
	}
	return nil
}

// Attribute key trở thành tên cột nên chỉ chấp nhận key đã khai báo trong Kind
func (s *Service) checkAttributes(attrs map[string]any) error {
	unknown := make([]string, 0)
	for key := range attrs {
		if !s.kind.HasAttribute(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return NewValidationError(ReasonUnknownAttribute, "unknown attributes: %s", strings.Join(unknown, ", "))
}

func (s *Service) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "hierarchy."+op, trace.WithAttributes(attribute.String("hierarchy.kind", s.kind.Name)))
}

func (s *Service) treeKey(scope Scope) string {
	return "tree:" + s.kind.Name + ":" + scope.String()
}

// Invalidate xóa mọi tree cache của kind
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "tree:"+s.kind.Name+":*"); err != nil {
		logger.Error("tree cache invalidation failed", err)
	}
}

func mapSlugError(err error) error {
	switch {
	case errors.Is(err, utils.ErrEmptySlug):
		return NewValidationError(ReasonInvalidSlug, "name must contain at least one letter or digit")
	case errors.Is(err, utils.ErrSlugExhausted):
		return fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
	default:
		return err
	}
}
