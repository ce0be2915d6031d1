package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	dom "github.com/Codedeveloper-MT/Vigilent-login/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyAccount = "account:"

// AccountCache caches account lookups by username in Redis. Cached entries
// never include the password hash.
type AccountCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// cachedAccount is the stored projection. The hash is stripped before
// Set and stays zero after Get; verification always goes to Postgres.
type cachedAccount struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAccountCache returns a new AccountCache.
func NewAccountCache(rdb *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached account or a zero Account and false on miss.
func (c *AccountCache) Get(ctx context.Context, username string) (dom.Account, bool, error) {
	b, err := c.rdb.Get(ctx, keyAccount+normalize(username)).Bytes()
	if err == redis.Nil {
		return dom.Account{}, false, nil
	}
	if err != nil {
		return dom.Account{}, false, err
	}
	var ca cachedAccount
	if err := json.Unmarshal(b, &ca); err != nil {
		return dom.Account{}, false, err
	}
	return dom.Account{
		ID:        ca.ID,
		Username:  ca.Username,
		Country:   ca.Country,
		Phone:     ca.Phone,
		CreatedAt: ca.CreatedAt,
		UpdatedAt: ca.UpdatedAt,
	}, true, nil
}

// Set stores the account without its password hash.
func (c *AccountCache) Set(ctx context.Context, a dom.Account) error {
	b, err := json.Marshal(cachedAccount{
		ID:        a.ID,
		Username:  a.Username,
		Country:   a.Country,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyAccount+normalize(a.Username), b, c.ttl).Err()
}

// Invalidate drops the cached entry for username (cache invalidation on write).
func (c *AccountCache) Invalidate(ctx context.Context, username string) error {
	return c.rdb.Del(ctx, keyAccount+normalize(username)).Err()
}

func normalize(username string) string {
	return strings.TrimSpace(username)
}
