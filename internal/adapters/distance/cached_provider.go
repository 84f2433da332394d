package distance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"warehouse-route-service/internal/platform/metrics"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"
)

// CachedProvider serves matrices from a MatrixCache and falls back to the
// upstream provider on a miss, writing the fresh matrix back.
//
// Entries are keyed by the lowercased group key plus a digest of the
// ordered location list, so a group whose stops change never reuses an old
// matrix. A cached matrix whose shape does not match is treated as stale and
// rebuilt. Cache failures never fail a request.
type CachedProvider struct {
	upstream ports.MatrixProvider
	cache    ports.MatrixCache
}

func NewCachedProvider(upstream ports.MatrixProvider, cache ports.MatrixCache) (*CachedProvider, error) {
	if upstream == nil {
		return nil, errors.New("cached provider: upstream provider is nil")
	}
	if cache == nil {
		return nil, errors.New("cached provider: cache is nil")
	}
	return &CachedProvider{upstream: upstream, cache: cache}, nil
}

// CacheKey returns "<group>-<digest>" or "" when groupKey is blank.
// The digest covers every location in order.
func CacheKey(groupKey string, locations []string) string {
	group := strings.ToLower(strings.TrimSpace(groupKey))
	if group == "" {
		return ""
	}
	h := sha256.New()
	for _, loc := range locations {
		fmt.Fprintf(h, "%d:%s;", len(loc), loc)
	}
	return group + "-" + hex.EncodeToString(h.Sum(nil)[:8])
}

func (c *CachedProvider) GetMatrix(
	ctx context.Context,
	locations []string,
	groupKey string,
) (_ [][]int64, err error) {
	defer obs.Time(ctx, "cache.GetMatrix")(&err)

	key := CacheKey(groupKey, locations)
	if key == "" {
		return c.upstream.GetMatrix(ctx, locations, groupKey)
	}

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.MatrixCacheLookups.WithLabelValues("error").Inc()
		log.Printf("matrix cache read failed key=%s err=%v", key, err)
	case ok && ValidShape(cached, len(locations)):
		metrics.MatrixCacheLookups.WithLabelValues("hit").Inc()
		log.Printf("matrix cache hit key=%s size=%d", key, len(cached))
		return cached, nil
	case ok:
		metrics.MatrixCacheLookups.WithLabelValues("stale").Inc()
		log.Printf("matrix cache shape mismatch key=%s cached=%d want=%d, rebuilding", key, len(cached), len(locations))
	default:
		metrics.MatrixCacheLookups.WithLabelValues("miss").Inc()
	}

	matrix, err := c.upstream.GetMatrix(ctx, locations, groupKey)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, matrix); err != nil {
		log.Printf("matrix cache write failed key=%s err=%v", key, err)
	}

	return matrix, nil
}

// ValidShape reports whether m is a non-empty n x n matrix.
func ValidShape(m [][]int64, n int) bool {
	if n == 0 || len(m) != n {
		return false
	}
	for _, row := range m {
		if len(row) != n {
			return false
		}
	}
	return true
}
