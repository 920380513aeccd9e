package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// RedisStore keeps sessions in Redis so restarts and replicas share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{client: c, ttl: ttl, ctx: context.Background()}
}

func (r *RedisStore) Create(user models.User) (string, error) {
	token := NewToken()
	b, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	if err := r.client.Set(r.ctx, sessionKey(token), b, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisStore) Get(token string) (models.User, bool) {
	raw, err := r.client.Get(r.ctx, sessionKey(token)).Bytes()
	if err != nil {
		return models.User{}, false
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, false
	}
	return u, true
}

func (r *RedisStore) Delete(token string) {
	_ = r.client.Del(r.ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string { return "admin:session:" + token }
