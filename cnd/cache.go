package cnd

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by source hash. Sources are often
// reparsed unchanged (watch mode, repeated checks), so caching the compiled
// records avoids redundant work.
//
//nolint:gochecknoglobals
var globalCache sync.Map

// cacheState holds the single parse of one source text.
type cacheState struct {
	once  sync.Once
	types []NodeTypeDefinition
	ns    *Namespaces
	err   error
}

// ParseStringCached is ParseString with memoization: identical source text
// is parsed once and the compiled records are reused. Each caller receives
// its own copy of the prefix table, so declarations on it do not leak
// between callers. Parses seeded with WithNamespaces bypass the cache.
func ParseStringCached(ctx context.Context, source string, opts ...Option) (*Result, error) {
	probe := newParser(nil, opts...)
	if probe.seeded {
		return ParseString(ctx, source, opts...)
	}

	// Hash source and system id together: the id appears in rendered
	// errors, so results are only shared when both match.
	key := xxh3.Hash([]byte(source)) ^ xxh3.Hash([]byte(probe.systemID))
	sourceKey := strconv.FormatUint(key, 36)

	entry := new(cacheState)

	value, hit := globalCache.LoadOrStore(sourceKey, entry)

	state, ok := value.(*cacheState)
	if !ok {
		return ParseString(ctx, source, opts...)
	}

	probe.logger.DebugContext(ctx, "cache lookup",
		slog.String("source_hash", sourceKey),
		slog.Bool("cache_hit", hit))

	state.once.Do(func() {
		res, err := ParseString(ctx, source, opts...)
		if err != nil {
			state.err = err

			return
		}

		state.types = res.NodeTypes
		state.ns = res.Namespaces
	})

	if state.err != nil {
		return nil, state.err
	}

	return &Result{
		NodeTypes:  slices.Clone(state.types),
		Namespaces: state.ns.Clone(),
	}, nil
}

// ClearCache removes all cached parse results. This is primarily useful for
// testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache = sync.Map{}
}
