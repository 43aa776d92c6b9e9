package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/models"
)

// Engine is the in-memory directory adapter. It emulates the backend's CRUD
// and query semantics without network I/O: same validation, same error
// taxonomy, plus a configurable simulated latency so callers exercise the
// same asynchronous shape they would against the real client.
//
// The dataset is owned by the Engine instance, never package state, so tests
// can run independent engines without cross-contamination.
type Engine struct {
	mu       sync.Mutex
	products []models.Product
	nextID   int
	latency  time.Duration
	bus      *bus.Bus
}

// NewEngine creates an empty engine publishing to b. Latency is the
// simulated per-operation delay; zero disables it.
func NewEngine(b *bus.Bus, latency time.Duration) *Engine {
	return &Engine{
		nextID:  1,
		latency: latency,
		bus:     b,
	}
}

// Seed replaces the dataset with the given products and advances the id
// sequence past the highest seeded id. Intended for startup and tests.
func (e *Engine) Seed(products []models.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.products = append([]models.Product(nil), products...)
	e.nextID = 1
	for i := range e.products {
		if e.products[i].ID >= e.nextID {
			e.nextID = e.products[i].ID + 1
		}
	}
	log.Debug().Int("count", len(e.products)).Msg("directory engine seeded")
}

// List applies the conjunctive filters in order, paginates the result and
// publishes the returned page. Fails with INVALID_ARGUMENT when page < 1.
func (e *Engine) List(ctx context.Context, filter models.Filter, page models.Pagination) (*models.PaginatedResult, error) {
	e.bus.SetLoading(true)
	defer e.bus.SetLoading(false)

	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	page = page.Normalize()
	if page.Page < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("page must be >= 1, got %d", page.Page))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var filtered []models.Product
	for i := range e.products {
		if filter.Matches(&e.products[i]) {
			filtered = append(filtered, e.products[i])
		}
	}

	total := len(filtered)
	start := (page.Page - 1) * page.PageSize
	end := start + page.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	data := append([]models.Product(nil), filtered[start:end]...)

	result := models.NewPaginatedResult(data, page.Page, page.PageSize, total)
	e.bus.Publish(result.Data)
	return result, nil
}

// Get returns the product with the given id.
func (e *Engine) Get(ctx context.Context, id int) (*models.Product, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return nil, notFound(id)
	}
	p := e.products[idx]
	return &p, nil
}

// Create validates the input, assigns the next sequential id and both
// timestamps, appends the product and publishes the full updated list.
func (e *Engine) Create(ctx context.Context, input models.CreateInput) (*models.Product, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	if err := ValidateCreate(&input); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	p := models.Product{
		ID:          e.nextID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Active:      input.IsActive(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.nextID++
	e.products = append(e.products, p)
	e.publishAllLocked()

	log.Debug().Int("id", p.ID).Str("name", p.Name).Msg("product created")
	return &p, nil
}

// Update merges the present patch fields into the stored product,
// preserving id and createdAt, stamps updatedAt and publishes the full
// updated list.
func (e *Engine) Update(ctx context.Context, id int, input models.UpdateInput) (*models.Product, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	if id < 1 {
		return nil, models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}
	if err := ValidateUpdate(&input); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return nil, notFound(id)
	}

	p := e.products[idx]
	input.Apply(&p)
	p.ID = id
	p.UpdatedAt = time.Now()
	e.products[idx] = p
	e.publishAllLocked()

	log.Debug().Int("id", id).Msg("product updated")
	return &p, nil
}

// Delete removes the product and publishes the full updated list.
func (e *Engine) Delete(ctx context.Context, id int) error {
	if err := e.wait(ctx); err != nil {
		return err
	}
	if id < 1 {
		return models.ErrInvalidArgument(fmt.Sprintf("id must be >= 1, got %d", id))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return notFound(id)
	}
	e.products = append(e.products[:idx], e.products[idx+1:]...)
	e.publishAllLocked()

	log.Debug().Int("id", id).Msg("product deleted")
	return nil
}

// wait simulates network latency cooperatively: it suspends on a timer and
// honors context expiry, so a slow simulated call never blocks the rest of
// the process and never half-applies a mutation.
func (e *Engine) wait(ctx context.Context) *models.ApiError {
	if e.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return ctxError(err)
		}
		return nil
	}

	timer := time.NewTimer(e.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctxError(ctx.Err())
	}
}

// indexOf must be called with the lock held.
func (e *Engine) indexOf(id int) int {
	for i := range e.products {
		if e.products[i].ID == id {
			return i
		}
	}
	return -1
}

// publishAllLocked pushes the full dataset to the bus. Must be called with
// the lock held.
func (e *Engine) publishAllLocked() {
	e.bus.Publish(append([]models.Product(nil), e.products...))
}

func notFound(id int) *models.ApiError {
	return models.ErrNotFound(fmt.Sprintf("product %d not found", id))
}

func ctxError(err error) *models.ApiError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout("operation timed out")
	}
	return models.ErrUnknown("operation canceled", err.Error())
}
