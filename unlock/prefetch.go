package unlock

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	terminal "github.com/0xmeta/terminal-go"
)

// FreeFetcher fetches a category's content through the no-payment endpoint.
type FreeFetcher interface {
	GetFreeNews(ctx context.Context, category string) (terminal.NewsResponse, error)
}

// Normalizer turns a raw feed into display items.
type Normalizer func(category string, resp terminal.NewsResponse, now time.Time) []terminal.NewsItem

// Prefetcher populates the cache for the designated free categories. It
// runs once per session and processes categories one at a time; a failure
// for one category is logged and must not abort the others.
type Prefetcher struct {
	cache      *Cache
	fetcher    FreeFetcher
	normalize  Normalizer
	categories []string
	log        *zap.Logger
	once       sync.Once
}

// NewPrefetcher creates a prefetcher for the given free categories.
func NewPrefetcher(cache *Cache, fetcher FreeFetcher, normalize Normalizer, categories []string, log *zap.Logger) *Prefetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prefetcher{
		cache:      cache,
		fetcher:    fetcher,
		normalize:  normalize,
		categories: categories,
		log:        log,
	}
}

// Run fills the cache for every free category that has no fresh entry.
// Guarded to execute at most once per session; repeat calls are no-ops.
func (p *Prefetcher) Run(ctx context.Context) {
	p.once.Do(func() {
		p.run(ctx)
	})
}

func (p *Prefetcher) run(ctx context.Context) {
	for _, category := range p.categories {
		if ctx.Err() != nil {
			return
		}
		if p.cache.Has(category) {
			continue
		}

		resp, err := p.fetcher.GetFreeNews(ctx, category)
		if err != nil {
			p.log.Warn("free category fetch failed",
				zap.String("category", category), zap.Error(err))
			continue
		}

		items := p.normalize(category, resp, time.Now())
		if err := p.cache.Put(category, items); err != nil {
			p.log.Warn("failed to cache free category",
				zap.String("category", category), zap.Error(err))
			continue
		}
		p.log.Info("free category prefetched",
			zap.String("category", category), zap.Int("items", len(items)))
	}
}
