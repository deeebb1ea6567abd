package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/repository"
	"cms-backend/internal/shared/utils"
	"cms-backend/pkg/cache"
	"cms-backend/pkg/logger"
)

// ItemTree là phần của item service mà menu service cần
type ItemTree interface {
	FindTree(ctx context.Context, scope hierarchy.Scope) ([]*hierarchy.TreeNode, error)
	Invalidate(ctx context.Context)
}

type Service struct {
	repo  Repository
	items ItemTree
}

func NewService(repo Repository, items ItemTree) *Service {
	return &Service{repo: repo, items: items}
}

// NewItemService dựng hierarchy service cho menu_items
func NewItemService(db repository.DBTX, c cache.Cache, ttl time.Duration) (*hierarchy.Service, error) {
	repo, err := repository.NewPostgresRepository(db, ItemKind)
	if err != nil {
		return nil, err
	}

	var opts []hierarchy.Option
	if c != nil {
		opts = append(opts, hierarchy.WithCache(c, ttl))
	}
	return hierarchy.NewService(ItemKind, repo, opts...)
}

func (s *Service) Create(ctx context.Context, req CreateMenuReq) (*Menu, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	slug, err := s.resolveSlug(ctx, name, req.Slug, nil)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	created, err := s.repo.Create(ctx, &Menu{
		Name:        name,
		Slug:        slug,
		Location:    req.Location,
		Description: req.Description,
		IsActive:    active,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("menu created", map[string]interface{}{
		"id":   created.ID,
		"slug": created.Slug,
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Menu, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Menu, error) {
	return s.repo.List(ctx)
}

// Update: đổi tên mà không gửi slug thì slug được sinh lại
func (s *Service) Update(ctx context.Context, id int64, patch MenuPatch) (*Menu, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		patch.Name = &name
	}

	switch {
	case patch.Slug != nil:
		slug, err := s.resolveSlug(ctx, current.Name, patch.Slug, &id)
		if err != nil {
			return nil, err
		}
		patch.Slug = &slug
	case patch.Name != nil && *patch.Name != current.Name:
		slug, err := s.resolveSlug(ctx, *patch.Name, nil, &id)
		if err != nil {
			return nil, err
		}
		patch.Slug = &slug
	}

	if patch.IsEmpty() {
		return current, nil
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete xóa menu và mọi item của nó, sau đó xóa tree cache của item
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.items != nil {
		s.items.Invalidate(ctx)
	}

	logger.Info("menu deleted", map[string]interface{}{
		"id":            id,
		"items_removed": removed,
	})
	return nil
}

// Tree trả về menu kèm cây item
func (s *Service) Tree(ctx context.Context, id int64) (*MenuTree, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, m)
}

// TreeByLocation dùng cho frontend: GET /menus/location/header/tree
func (s *Service) TreeByLocation(ctx context.Context, location string) (*MenuTree, error) {
	m, err := s.repo.GetByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, m)
}

func (s *Service) withItems(ctx context.Context, m *Menu) (*MenuTree, error) {
	items := make([]*hierarchy.TreeNode, 0)
	if s.items != nil {
		forest, err := s.items.FindTree(ctx, hierarchy.Scope{ScopeID: &m.ID})
		if err != nil {
			return nil, fmt.Errorf("load items of menu %d: %w", m.ID, err)
		}
		items = forest
	}
	return &MenuTree{Menu: m, Items: items}, nil
}

// resolveSlug: slug gửi lên được chuẩn hóa và phải còn trống, không gửi thì sinh từ tên
func (s *Service) resolveSlug(ctx context.Context, name string, explicit *string, excludeID *int64) (string, error) {
	if explicit == nil {
		slug, err := utils.GenerateSlugFromTitle(ctx, name, s.repo.ExistsBySlug, excludeID)
		switch {
		case errors.Is(err, utils.ErrEmptySlug):
			return "", hierarchy.NewValidationError(hierarchy.ReasonInvalidSlug, "name must contain at least one letter or digit")
		case errors.Is(err, utils.ErrSlugExhausted):
			return "", ErrDuplicateSlug
		case err != nil:
			return "", err
		}
		return slug, nil
	}

	slug := utils.Slugify(*explicit)
	if slug == "" {
		return "", hierarchy.ErrInvalidSlug
	}
	taken, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrDuplicateSlug
	}
	return slug, nil
}
