package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/cache"
	"github.com/vitrineshop/catalog_api/internal/models"
	"github.com/vitrineshop/catalog_api/internal/repository"
)

// Store is the Postgres-backed directory adapter. It enforces the same
// validation rules and error taxonomy as the in-memory Engine, so the two
// are interchangeable behind the Directory interface. Mutations update the
// bus with targeted applies instead of refetching the whole table.
type Store struct {
	repo  *repository.ProductRepository
	cache *cache.ProductCache
	bus   *bus.Bus
}

// NewStore constructs a Store. The cache may be nil when Redis is not
// configured.
func NewStore(repo *repository.ProductRepository, productCache *cache.ProductCache, b *bus.Bus) *Store {
	return &Store{repo: repo, cache: productCache, bus: b}
}

// List queries one filtered page and publishes it to the bus.
func (s *Store) List(ctx context.Context, filter models.Filter, page models.Pagination) (*models.PaginatedResult, error) {
	s.bus.SetLoading(true)
	defer s.bus.SetLoading(false)

	page = page.Normalize()
	if page.Page < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("page must be >= 1, got %d", page.Page))
	}

	products, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, storageError("failed to list products", err)
	}

	result := models.NewPaginatedResult(products, page.Page, page.PageSize, total)
	s.bus.Publish(result.Data)
	return result, nil
}

// Get reads through the Redis cache when one is configured.
func (s *Store) Get(ctx context.Context, id int) (*models.Product, error) {
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}

	if s.cache != nil {
		if p, err := s.cache.Get(ctx, id); err != nil {
			log.Warn().Err(err).Int("id", id).Msg("product cache read failed")
		} else if p != nil {
			return p, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, storageError("failed to load product", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Int("id", id).Msg("product cache write failed")
		}
	}
	return p, nil
}

// Create validates and inserts, then applies the new record to the bus.
func (s *Store) Create(ctx context.Context, input models.CreateInput) (*models.Product, error) {
	if err := ValidateCreate(&input); err != nil {
		return nil, err
	}

	p := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Active:      input.IsActive(),
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, storageError("failed to create product", err)
	}

	s.bus.ApplyCreate(p)
	log.Debug().Int("id", p.ID).Str("name", p.Name).Msg("product created")
	return &p, nil
}

// Update merges the patch into the stored row, preserving id/createdAt.
func (s *Store) Update(ctx context.Context, id int, input models.UpdateInput) (*models.Product, error) {
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}
	if err := ValidateUpdate(&input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, storageError("failed to load product", err)
	}

	p := *existing
	input.Apply(&p)
	p.ID = id
	if err := s.repo.Update(ctx, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, storageError("failed to update product", err)
	}

	s.invalidate(ctx, id)
	s.bus.ApplyUpdate(p)
	log.Debug().Int("id", id).Msg("product updated")
	return &p, nil
}

// Delete removes the row and drops it from cache and bus.
func (s *Store) Delete(ctx context.Context, id int) error {
	if id < 1 {
		return models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		return storageError("failed to delete product", err)
	}

	s.invalidate(ctx, id)
	s.bus.ApplyDelete(id)
	log.Debug().Int("id", id).Msg("product deleted")
	return nil
}

func (s *Store) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Int("id", id).Msg("product cache invalidation failed")
	}
}

// storageError normalizes database failures: context expiry becomes
// TIMEOUT, everything else UNAVAILABLE with the cause in the details.
func storageError(message string, err error) *models.ApiError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout(message)
	}
	return models.ErrUnavailable(message, err.Error())
}

// Compile-time checks that both local adapters satisfy the contract.
var (
	_ Directory = (*Engine)(nil)
	_ Directory = (*Store)(nil)
)
