package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/tdl/log"
)

// MaxCacheEntries bounds the number of parse results kept by [Parse]. The
// least recently used entry is evicted first.
const MaxCacheEntries = 512

// globalCache stores parsed templates keyed by the xxh3 hash of their source.
var globalCache = func() *lru.Cache[string, *entry] {
	c, err := lru.New[string, *entry](MaxCacheEntries)
	if err != nil {
		panic(err)
	}

	return c
}()

// entry parses its source exactly once.
type entry struct {
	once   sync.Once
	source string
	parsed *ParsedTemplate
}

func cacheKey(source string) string {
	return strconv.FormatUint(xxh3.HashString(source), 36)
}

// parseCached returns the cached parse of source, parsing it on first use.
func parseCached(ctx context.Context, source string, logger log.Logger) *ParsedTemplate {
	key := cacheKey(source)

	e, cacheHit := globalCache.Get(key)
	if !cacheHit {
		e = &entry{source: source}

		if prev, ok, evicted := globalCache.PeekOrAdd(key, e); ok {
			e, cacheHit = prev, true
		} else if evicted {
			logger.TraceContext(ctx, "cache evict", slog.Int("size", globalCache.Len()))
		}
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", cacheHit))

	// hash collision
	if e.source != source {
		logger.DebugContext(ctx, "cache collision", slog.String("key", key))

		return parse(ctx, source, logger)
	}

	e.once.Do(func() {
		e.parsed = parse(ctx, source, logger)
	})

	return e.parsed
}

// ClearCache removes all cached parse results.
func ClearCache() {
	globalCache.Purge()
}
