package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/repository"
	"github.com/dat564/e-commerce-sub001/services"
)

const (
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"

	defaultCacheTTL = 5 * time.Minute
)

// CacheManager handles Redis caching for product listings. Keys embed a
// version counter; catalog writes bump the version instead of enumerating
// stale keys.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCacheManager(rdb *redis.Client, log *zap.Logger) *CacheManager {
	return &CacheManager{redis: rdb, ttl: defaultCacheTTL, log: log}
}

// GetProductList retrieves a cached product listing.
func (cm *CacheManager) GetProductList(ctx context.Context, page, limit int, filter repository.ProductFilter) (*services.ProductListResponse, bool) {
	if cm == nil || cm.redis == nil {
		return nil, false
	}

	version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil || version == 0 {
		return nil, false
	}

	cached, err := cm.redis.Get(ctx, cm.listCacheKey(version, page, limit, filter)).Result()
	if err != nil {
		return nil, false
	}

	var response services.ProductListResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		cm.log.Warn("failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return &response, true
}

// SetProductListAsync caches a product listing without blocking the request.
func (cm *CacheManager) SetProductListAsync(page, limit int, filter repository.ProductFilter, response *services.ProductListResponse) {
	if cm == nil || cm.redis == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.redis.Get(bgCtx, cacheVersionKey).Int64()
		if err != nil {
			version, err = cm.redis.Incr(bgCtx, cacheVersionKey).Result()
			if err != nil {
				return
			}
		}

		data, err := json.Marshal(response)
		if err != nil {
			return
		}
		if err := cm.redis.Set(bgCtx, cm.listCacheKey(version, page, limit, filter), data, cm.ttl).Err(); err != nil {
			cm.log.Warn("failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate bumps the version so every cached listing key goes stale.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if cm == nil || cm.redis == nil {
		return
	}
	if err := cm.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		cm.log.Warn("failed to bump product cache version", zap.Error(err))
	}
}

func (cm *CacheManager) listCacheKey(version int64, page, limit int, filter repository.ProductFilter) string {
	categoryID := ""
	if filter.CategoryID != nil {
		categoryID = filter.CategoryID.Hex()
	}
	return fmt.Sprintf("%s%d:p%d:l%d:s%s:b%s:c%s", productListCachePrefix, version, page, limit, filter.Search, filter.Brand, categoryID)
}
