package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/directory"
	"github.com/vitrineshop/catalog_api/internal/models"
)

// RefreshWorker periodically re-lists the directory so the notification
// bus stays warm for views that only subscribe. A failed refresh is logged
// and leaves the bus unchanged: List only publishes on success.
type RefreshWorker struct {
	dir      directory.Directory
	interval time.Duration
}

// NewRefreshWorker constructs a RefreshWorker.
func NewRefreshWorker(dir directory.Directory, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{dir: dir, interval: interval}
}

// Start begins the periodic refresh loop until context is canceled.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting refresh worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Refresh worker stopped")
			return
		}
	}
}

func (w *RefreshWorker) run(ctx context.Context) {
	result, err := w.dir.List(ctx, models.Filter{}, models.Pagination{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh product list")
		return
	}
	log.Debug().Int("count", len(result.Data)).Int("total", result.TotalItems).Msg("Product list refreshed")
}
