package productcategory

import (
	"time"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/hierarchy/repository"
	"cms-backend/pkg/cache"
)

func NewService(db repository.DBTX, c cache.Cache, ttl time.Duration) (*hierarchy.Service, error) {
	repo, err := repository.NewPostgresRepository(db, Kind)
	if err != nil {
		return nil, err
	}

	var opts []hierarchy.Option
	if c != nil {
		opts = append(opts, hierarchy.WithCache(c, ttl))
	}
	return hierarchy.NewService(Kind, repo, opts...)
}
