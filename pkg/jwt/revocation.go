package jwt

import (
	"context"
	"fmt"
	"time"

	"cms-backend/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationStore giữ danh sách token đã logout trong cache với TTL bằng
// thời gian sống còn lại của token, nên key tự hết hạn cùng token.
type RevocationStore struct {
	cache cache.Cache
	now   func() time.Time
}

func NewRevocationStore(c cache.Cache) *RevocationStore {
	return &RevocationStore{cache: c, now: time.Now}
}

// Revoke đánh dấu token (theo jti) là không còn hiệu lực
func (s *RevocationStore) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("revoke token: missing token id")
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		// Đã hết hạn, không cần lưu
		return nil
	}

	if err := s.cache.Set(ctx, revokedKeyPrefix+claims.ID, true, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims == nil || claims.ID == "" {
		return false, nil
	}
	return s.cache.Exists(ctx, revokedKeyPrefix+claims.ID)
}
