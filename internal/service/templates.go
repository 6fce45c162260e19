package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// TemplateStore is implemented by repository.TemplateRepo.
type TemplateStore interface {
	ListVisible(ctx context.Context, c model.Catalog, userID uint64) ([]model.Template, error)
	Create(ctx context.Context, t *model.Template) error
}

// kv is the slice of Redis the catalog cache uses.  Get reports a missing
// key as redis.Nil.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) error
}

type redisKV struct{ rdb *redis.Client }

func (r redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	return r.rdb.Get(ctx, key).Bytes()
}

func (r redisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, val, ttl).Err()
}

func (r redisKV) Incr(ctx context.Context, key string) error {
	return r.rdb.Incr(ctx, key).Err()
}

// TemplateService serves template lists, caching them per catalog, catalog
// version and user.  Every create bumps the catalog version so later reads
// miss the old entries, which then expire.  Redis errors are logged and
// the database answers instead.
type TemplateService struct {
	store TemplateStore
	cache kv
	cfg   config.CatalogCacheConfig
	log   *zap.Logger
}

// NewTemplateService wires the cache.  A nil rdb or a disabled config turns
// caching off.
func NewTemplateService(store TemplateStore, rdb *redis.Client, cfg config.CatalogCacheConfig, log *zap.Logger) *TemplateService {
	s := &TemplateService{store: store, cfg: cfg, log: log}
	if rdb != nil && cfg.Enabled {
		s.cache = redisKV{rdb}
	}
	return s
}

// List returns the templates of catalog c visible to userID.
func (s *TemplateService) List(ctx context.Context, c model.Catalog, userID uint64) ([]model.Template, error) {
	if s.cache == nil {
		return s.store.ListVisible(ctx, c, userID)
	}

	key := s.listKey(ctx, c, userID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var out []model.Template
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := s.store.ListVisible(ctx, c, userID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cfg.TTL); err != nil {
			s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Create stores t and invalidates the cached lists of its catalog.
func (s *TemplateService) Create(ctx context.Context, t *model.Template) error {
	if err := s.store.Create(ctx, t); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Incr(ctx, s.versionKey(t.Catalog)); err != nil {
			s.log.Warn("catalog cache invalidation failed", zap.String("catalog", string(t.Catalog)), zap.Error(err))
		}
	}
	return nil
}

func (s *TemplateService) versionKey(c model.Catalog) string {
	return fmt.Sprintf("%s:%s:ver", s.cfg.Prefix, c)
}

func (s *TemplateService) listKey(ctx context.Context, c model.Catalog, userID uint64) string {
	ver := int64(0)
	if raw, err := s.cache.Get(ctx, s.versionKey(c)); err == nil {
		ver, _ = strconv.ParseInt(string(raw), 10, 64)
	}
	return fmt.Sprintf("%s:%s:v%d:u%d", s.cfg.Prefix, c, ver, userID)
}
