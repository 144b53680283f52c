package adapters

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Refresher periodically re-fetches every registered adapter's hierarchy
// into the cache so stale trees converge without user interaction.
type Refresher struct {
	adapters []Adapter
	client   *Client
	cache    *Cache
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewRefresher(adapters []Adapter, client *Client, cache *Cache, logger *slog.Logger) *Refresher {
	return &Refresher{
		adapters: adapters,
		client:   client,
		cache:    cache,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the refresh and runs one immediately so the cache is warm
// before the first request.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	if _, err := r.cron.AddFunc(schedule, func() { r.RefreshAll(ctx) }); err != nil {
		return err
	}

	r.cron.Start()
	r.RefreshAll(ctx)

	return nil
}

func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll fetches every registered adapter. One unreachable adapter does
// not block the others.
func (r *Refresher) RefreshAll(ctx context.Context) {
	for _, adapter := range r.adapters {
		tree, err := r.client.FetchTree(ctx, adapter)
		if err != nil {
			r.logger.Warn("failed to refresh adapter tree", "adapter_id", adapter.ID, "error", err)

			continue
		}

		if err := r.cache.Set(ctx, adapter.ID, tree); err != nil {
			r.logger.Warn("failed to cache adapter tree", "adapter_id", adapter.ID, "error", err)
		}
	}
}
