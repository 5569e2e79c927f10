package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	sessionJson, err := lc.redisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return false, err
	}

	var session LoginSession
	if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
		return false, err
	}

	createdAt := time.Unix(session.CreatedAt, 0)
	if time.Since(createdAt) > lc.ttl {
		return false, nil
	}

	return true, nil
}
