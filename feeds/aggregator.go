// Package feeds aggregates pre-classified threat items from independent
// third-party sources.
package feeds

import (
	"context"

	"ctiscope/core"
	"ctiscope/metrics"

	"go.uber.org/zap"
)

// Source is one external feed adapter. Fetch returns at most the adapter's
// configured item cap; an adapter without a credential returns an empty
// slice and no error.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]core.FeedItem, error)
}

// Aggregator fans out to every configured source and concatenates the
// results in registration order. A failing or disabled source never blocks
// the others; its items are simply absent from the aggregate.
type Aggregator struct {
	sources []Source
	logger  *zap.SugaredLogger
}

// NewAggregator creates an aggregator over the given sources. Order is
// preserved in the aggregate output.
func NewAggregator(logger *zap.SugaredLogger, sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logger,
	}
}

// Aggregate queries all sources and merges their items. Per-source failures
// are logged and counted but never propagate.
func (a *Aggregator) Aggregate(ctx context.Context) []core.FeedItem {
	items := []core.FeedItem{}
	for _, src := range a.sources {
		fetched, err := src.Fetch(ctx)
		if err != nil {
			a.logger.Warnw("feed source failed", "source", src.Name(), "error", err)
			metrics.FeedSourceFailures.WithLabelValues(src.Name()).Inc()
			continue
		}
		metrics.FeedItemsFetched.WithLabelValues(src.Name()).Add(float64(len(fetched)))
		items = append(items, fetched...)
	}
	return items
}
