package directory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// Directory is the product directory capability. The in-memory Engine, the
// Postgres Store and the remote HTTP client all satisfy it, so callers are
// wired to exactly one implementation at startup and never branch on the
// mode afterwards.
type Directory interface {
	List(ctx context.Context, filter models.Filter, page models.Pagination) (*models.PaginatedResult, error)
	Get(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, input models.CreateInput) (*models.Product, error)
	Update(ctx context.Context, id int, input models.UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id int) error
}

// ListOrEmpty performs a listing and converts a failure into an empty first
// page instead of propagating it. Listing views use this so a failed refresh
// renders zero items rather than crashing; mutations never get this
// treatment. The notification bus is left untouched on failure because the
// underlying List only publishes on success.
func ListOrEmpty(ctx context.Context, d Directory, filter models.Filter, page models.Pagination) *models.PaginatedResult {
	result, err := d.List(ctx, filter, page)
	if err != nil {
		log.Warn().Err(err).Msg("product listing failed, falling back to empty page")
		return models.EmptyPage(page.Normalize().PageSize)
	}
	return result
}
