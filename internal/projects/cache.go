package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "portfolio:project:"  // single record view: portfolio:project:{id}
	listKeyPrefix   = "portfolio:projects:" // listing page: portfolio:projects:v{n}:{signature}
	listVersionKey  = "portfolio:projects:version"
)

// Cache is an advisory read accelerator in front of the record store.
// Implementations must degrade every failure to a miss; a broken cache can
// never fail a request.
type Cache interface {
	GetList(ctx context.Context, f ListFilter, page, limit int) (*Page, bool)
	SetList(ctx context.Context, f ListFilter, page, limit int, result *Page)
	GetRecord(ctx context.Context, id string) (*View, bool)
	SetRecord(ctx context.Context, id string, v *View)
	// Invalidate drops the cached record for id and bumps the listing
	// namespace version so stale pages stop matching.
	Invalidate(ctx context.Context, id string)
}

// RedisCache stores JSON-serialized pages and record views with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

// listSignature is a pure function of the listing request: identical
// filters and pagination always produce the identical signature.
func listSignature(f ListFilter, page, limit int) string {
	featured, category := "", ""
	if f.Featured != nil {
		featured = fmt.Sprintf("%t", *f.Featured)
	}
	if f.Category != nil {
		category = string(*f.Category)
	}
	return fmt.Sprintf("p=%d&l=%d&f=%s&c=%s&q=%s", page, limit, featured, category, f.Search)
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

func (c *RedisCache) listKey(ctx context.Context, f ListFilter, page, limit int) string {
	version, err := c.client.Get(ctx, listVersionKey).Result()
	if err != nil {
		version = "0"
	}
	return listKeyPrefix + "v" + version + ":" + listSignature(f, page, limit)
}

func (c *RedisCache) GetList(ctx context.Context, f ListFilter, page, limit int) (*Page, bool) {
	data, err := c.client.Get(ctx, c.listKey(ctx, f, page, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get list: %v", err)
		}
		return nil, false
	}

	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("cache decode list: %v", err)
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) SetList(ctx context.Context, f ListFilter, page, limit int, p *Page) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("cache encode list: %v", err)
		return
	}
	if err := c.client.Set(ctx, c.listKey(ctx, f, page, limit), data, c.ttl).Err(); err != nil {
		log.Printf("cache set list: %v", err)
	}
}

func (c *RedisCache) GetRecord(ctx context.Context, id string) (*View, bool) {
	data, err := c.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get record: %v", err)
		}
		return nil, false
	}

	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("cache decode record: %v", err)
		return nil, false
	}
	return &v, true
}

func (c *RedisCache) SetRecord(ctx context.Context, id string, v *View) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache encode record: %v", err)
		return
	}
	if err := c.client.Set(ctx, recordKey(id), data, c.ttl).Err(); err != nil {
		log.Printf("cache set record: %v", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, recordKey(id))
	pipe.Incr(ctx, listVersionKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("cache invalidate %s: %v", id, err)
	}
}
