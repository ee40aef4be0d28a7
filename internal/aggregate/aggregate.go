// Package aggregate runs the category pipeline: resolve sources, fetch
// every feed concurrently, normalize, optionally translate, then rank.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/cache"
	"newsdesk/internal/feeds"
	"newsdesk/internal/fetch"
	"newsdesk/internal/logger"
	"newsdesk/internal/metrics"
	"newsdesk/internal/news"
	"newsdesk/internal/translate"
)

// Options bound the pipeline. Zero values fall back to the defaults the
// service has always used.
type Options struct {
	PerSourceLimit int           // items kept per source
	MaxArticles    int           // cap on the ranked result
	Workers        int           // concurrent feed fetches
	RequestTimeout time.Duration // outer deadline for one category request
}

func (o Options) withDefaults() Options {
	if o.PerSourceLimit <= 0 {
		o.PerSourceLimit = 10
	}
	if o.MaxArticles <= 0 {
		o.MaxArticles = 30
	}
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 15 * time.Second
	}
	return o
}

type Service struct {
	registry *feeds.Registry
	fetcher  *fetch.Client
	enricher *translate.Enricher
	results  *cache.Cache
	opts     Options
}

// NewService wires the pipeline. enricher may be nil when translation is
// not configured; results may be nil to disable response caching.
func NewService(registry *feeds.Registry, fetcher *fetch.Client, enricher *translate.Enricher, results *cache.Cache, opts Options) *Service {
	return &Service{
		registry: registry,
		fetcher:  fetcher,
		enricher: enricher,
		results:  results,
		opts:     opts.withDefaults(),
	}
}

// Aggregate returns the ranked, capped article list for a category. Per
// source failures degrade to zero items from that source; the result is
// possibly empty but never an error. The returned category is the
// canonical key the request resolved to.
func (s *Service) Aggregate(ctx context.Context, category string, translateText bool) ([]news.Article, string) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRequestTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	sources, resolved := s.registry.Resolve(category)

	doTranslate := translateText && s.enricher != nil
	key := cache.Key(resolved, doTranslate)
	if s.results != nil {
		if articles, ok := s.results.Get(key); ok {
			metrics.Global.IncrementCacheHits()
			return articles, resolved
		}
		metrics.Global.IncrementCacheMisses()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	articles := s.collect(ctx, sources, resolved)

	if doTranslate {
		for i := range articles {
			s.enricher.Enrich(ctx, &articles[i])
		}
	}

	rank(articles)
	if len(articles) > s.opts.MaxArticles {
		articles = articles[:s.opts.MaxArticles]
	}

	if s.results != nil {
		s.results.Set(key, articles)
	}
	return articles, resolved
}

// collect fetches every source concurrently under a worker limit. Each
// source writes into its own slot, so the merge needs no locking and
// source order stays deterministic before ranking.
func (s *Service) collect(ctx context.Context, sources []feeds.Source, category string) []news.Article {
	perSource := make([][]news.Article, len(sources))

	sem := make(chan struct{}, s.opts.Workers)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src feeds.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			perSource[i] = s.fetchSource(ctx, src, category)
		}(i, src)
	}
	wg.Wait()

	var out []news.Article
	for _, articles := range perSource {
		out = append(out, articles...)
	}
	return out
}

// fetchSource runs fetch+parse+normalize for one source. Failures are
// logged and counted, never propagated.
func (s *Service) fetchSource(ctx context.Context, src feeds.Source, category string) []news.Article {
	payload, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		metrics.Global.IncrementFetchErrors()
		logger.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
		return nil
	}
	metrics.Global.IncrementFeedsFetched()

	items, err := fetch.Parse(payload, s.opts.PerSourceLimit)
	if err != nil {
		metrics.Global.IncrementFetchErrors()
		logger.Warn("feed parse failed", "source", src.Name, "error", err)
		return nil
	}
	metrics.Global.AddItemsParsed(len(items))

	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, news.Normalize(item, src, category))
	}
	logger.Debug("source collected", "source", src.Name, "articles", len(articles))
	return articles
}

// rank sorts newest first. Published is canonical "2006-01-02 15:04" or
// empty, so plain string comparison orders chronologically and empty
// dates sink to the end.
func rank(articles []news.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published > articles[j].Published
	})
}
