package category

import (
	"time"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/repository"
	"cms-backend/pkg/cache"
)

// NewService: category service trên Postgres, tree cache qua c (có thể nil)
func NewService(db repository.DBTX, c cache.Cache, ttl time.Duration) (*hierarchy.Service, error) {
	repo, err := repository.NewPostgresRepository(db, Kind)
	if err != nil {
		return nil, err
	}

	opts := []hierarchy.Option{}
	if c != nil {
		opts = append(opts, hierarchy.WithCache(c, ttl))
	}
	return hierarchy.NewService(Kind, repo, opts...)
}
