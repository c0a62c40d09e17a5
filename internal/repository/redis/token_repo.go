package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRevokeFailed = errors.New("token revoke failed")

const RevokedTokenPrefix = "auth:token:revoked"

// TokenRepository refresh token 黑名单，key 为 jti，过期时间等于 token 剩余有效期
type TokenRepository struct {
	Client *redis.Client
}

func (r *TokenRepository) key(jti string) string {
	return fmt.Sprintf("%s:%s", RevokedTokenPrefix, jti)
}

// Revoke 原子地吊销：返回 false 表示该 jti 之前已被吊销，refresh 轮换和登出共用
func (r *TokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	// 已经过期的 token 解析阶段就会被拒绝
	if ttl <= 0 {
		return false, nil
	}
	ok, err := r.Client.SetNX(ctx, r.key(jti), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}
	return ok, nil
}
