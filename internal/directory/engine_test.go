package directory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/directory"
	"github.com/vitrineshop/catalog_api/internal/models"
)

func newTestEngine(t *testing.T) (*directory.Engine, *bus.Bus) {
	t.Helper()
	b := bus.New()
	e := directory.NewEngine(b, 0)
	e.Seed(directory.SeedCatalog())
	return e, b
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func boolPtr(v bool) *bool { return &v }

func validInput() models.CreateInput {
	return models.CreateInput{
		Name:     "Teclado Mecanico",
		Price:    dec("299.90"),
		Category: models.CategoryEletronicos,
	}
}

func TestListDefaults(t *testing.T) {
	e, _ := newTestEngine(t)

	result, err := e.List(context.Background(), models.Filter{}, models.Pagination{})
	require.NoError(t, err)

	assert.Equal(t, 8, result.TotalItems)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, 10, result.PageSize)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrevious)
	assert.Len(t, result.Data, 8)
}

func TestListPagination(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := e.List(ctx, models.Filter{}, models.Pagination{Page: 2, PageSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 8, result.TotalItems)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Data, 3)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrevious)
	// Order of the filtered collection is preserved across pages.
	assert.Equal(t, 4, result.Data[0].ID)

	last, err := e.List(ctx, models.Filter{}, models.Pagination{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, last.Data, 2)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)

	beyond, err := e.List(ctx, models.Filter{}, models.Pagination{Page: 5, PageSize: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, 8, beyond.TotalItems)
}

func TestListPageBoundary(t *testing.T) {
	e, _ := newTestEngine(t)

	// 8 items on a single 10-wide page: exactly one page, no neighbors.
	result, err := e.List(context.Background(), models.Filter{}, models.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrevious)
	assert.Len(t, result.Data, 8)
}

func TestListRejectsInvalidPage(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.List(context.Background(), models.Filter{}, models.Pagination{Page: -1})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidArgument, models.AsApiError(err).Kind)
}

func TestListFilters(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	active, err := e.List(ctx, models.Filter{Active: boolPtr(true)}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 7, active.TotalItems)

	electronics, err := e.List(ctx, models.Filter{
		Category: models.CategoryEletronicos,
		Active:   boolPtr(true),
	}, models.Pagination{})
	require.NoError(t, err)
	require.Equal(t, 3, electronics.TotalItems)
	for _, p := range electronics.Data {
		assert.Equal(t, models.CategoryEletronicos, p.Category)
		assert.True(t, p.Active)
	}

	search, err := e.List(ctx, models.Filter{Search: "NOTEBOOK"}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, search.TotalItems)

	// Search matches descriptions as well as names.
	desc, err := e.List(ctx, models.Filter{Search: "algodao"}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, desc.TotalItems)

	priced, err := e.List(ctx, models.Filter{
		MinPrice: dec("100"),
		MaxPrice: dec("400"),
	}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 4, priced.TotalItems)

	// Bounds are inclusive.
	exact, err := e.List(ctx, models.Filter{MinPrice: dec("49.90"), MaxPrice: dec("49.90")}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, exact.TotalItems)
}

func TestCreateRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	input := validInput()
	input.Description = "Switches azuis, ABNT2"

	created, err := e.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 9, created.ID)
	assert.Equal(t, "Teclado Mecanico", created.Name)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("299.90")))
	assert.True(t, created.Active, "active defaults to true")
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := e.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	again, err := e.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again, "get is idempotent absent mutation")
}

func TestCreateTrimsName(t *testing.T) {
	e, _ := newTestEngine(t)

	input := validInput()
	input.Name = "  Mouse Sem Fio  "
	created, err := e.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Mouse Sem Fio", created.Name)
}

func TestCreateInactive(t *testing.T) {
	e, _ := newTestEngine(t)

	input := validInput()
	input.Active = boolPtr(false)
	created, err := e.Create(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, created.Active)
}

func TestCreateValidationCollectsAllViolations(t *testing.T) {
	e, b := newTestEngine(t)

	before := b.Current()
	_, err := e.Create(context.Background(), models.CreateInput{
		Name:     "ab",
		Price:    dec("-1"),
		Category: models.Category("INVALID"),
	})
	require.Error(t, err)

	apiErr := models.AsApiError(err)
	assert.Equal(t, models.KindValidationFailed, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "name must be between 3 and 200 characters")
	assert.Contains(t, apiErr.Message, "price must not be negative")
	assert.Contains(t, apiErr.Message, "category \"INVALID\" is invalid")
	assert.GreaterOrEqual(t, len(strings.Split(apiErr.Message, "; ")), 3)

	// A failed mutation leaves both the dataset and the bus untouched.
	assert.Equal(t, before, b.Current())
	result, err := e.List(context.Background(), models.Filter{}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalItems)
}

func TestCreateRequiresPriceAndCategory(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Create(context.Background(), models.CreateInput{Name: "Produto Sem Nada"})
	require.Error(t, err)

	apiErr := models.AsApiError(err)
	assert.Equal(t, models.KindValidationFailed, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "price is required")
	assert.Contains(t, apiErr.Message, "category is required")
}

func TestCreateRejectsOverlongFields(t *testing.T) {
	e, _ := newTestEngine(t)

	input := validInput()
	input.Name = strings.Repeat("a", 201)
	input.Description = strings.Repeat("b", 1001)
	input.Price = dec("1000000.00")

	_, err := e.Create(context.Background(), input)
	require.Error(t, err)

	apiErr := models.AsApiError(err)
	assert.Contains(t, apiErr.Message, "name must be between 3 and 200 characters")
	assert.Contains(t, apiErr.Message, "description must be at most 1000 characters")
	assert.Contains(t, apiErr.Message, "price must be at most 999999.99")
}

func TestUpdateEmptyPatch(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	before, err := e.Get(ctx, 1)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	updated, err := e.Update(ctx, 1, models.UpdateInput{})
	require.NoError(t, err)

	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.Name, updated.Name)
	assert.Equal(t, before.Description, updated.Description)
	assert.True(t, before.Price.Equal(updated.Price))
	assert.Equal(t, before.Category, updated.Category)
	assert.Equal(t, before.Active, updated.Active)
	assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt), "updatedAt must advance")
}

func TestUpdatePartial(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	newName := "Notebook Gamer 17\""
	updated, err := e.Update(ctx, 1, models.UpdateInput{
		Name:  &newName,
		Price: dec("5299.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("5299.90")))
	assert.Equal(t, models.CategoryEletronicos, updated.Category, "unspecified fields unchanged")

	got, err := e.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateValidatesPresentFieldsOnly(t *testing.T) {
	e, _ := newTestEngine(t)

	bad := models.Category("MOVEIS")
	_, err := e.Update(context.Background(), 1, models.UpdateInput{Category: &bad})
	require.Error(t, err)
	assert.Equal(t, models.KindValidationFailed, models.AsApiError(err).Kind)

	// The failed update must not have touched the record.
	got, err := e.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEletronicos, got.Category)
}

func TestUpdateNotFound(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Update(context.Background(), 999, models.UpdateInput{})
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.AsApiError(err).Kind)
}

func TestDeleteThenGet(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Delete(ctx, 5))

	_, err := e.Get(ctx, 5)
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.AsApiError(err).Kind)

	err = e.Delete(ctx, 5)
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.AsApiError(err).Kind)
}

func TestInvalidIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Get(ctx, 0)
	assert.Equal(t, models.KindInvalidArgument, models.AsApiError(err).Kind)

	err = e.Delete(ctx, -3)
	assert.Equal(t, models.KindInvalidArgument, models.AsApiError(err).Kind)

	_, err = e.Update(ctx, 0, models.UpdateInput{})
	assert.Equal(t, models.KindInvalidArgument, models.AsApiError(err).Kind)
}

func TestIDsStayStableAfterDelete(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Delete(ctx, 8))
	created, err := e.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, 9, created.ID, "ids are sequential, never reused")
}

func TestMutationsPublishToBus(t *testing.T) {
	e, b := newTestEngine(t)
	ctx := context.Background()

	created, err := e.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Len(t, b.Current().Products, 9, "create publishes the full updated list")

	_, err = e.Update(ctx, created.ID, models.UpdateInput{Price: dec("199.90")})
	require.NoError(t, err)
	require.Len(t, b.Current().Products, 9)

	require.NoError(t, e.Delete(ctx, created.ID))
	assert.Len(t, b.Current().Products, 8)

	// List publishes the returned page, not the full dataset.
	_, err = e.List(ctx, models.Filter{Category: models.CategoryLivros}, models.Pagination{})
	require.NoError(t, err)
	assert.Len(t, b.Current().Products, 1)
}

func TestSimulatedLatencyHonorsContext(t *testing.T) {
	b := bus.New()
	e := directory.NewEngine(b, 50*time.Millisecond)
	e.Seed(directory.SeedCatalog())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := e.Create(ctx, validInput())
	require.Error(t, err)
	assert.Equal(t, models.KindTimeout, models.AsApiError(err).Kind)

	// The timed-out mutation must not have been applied.
	result, err := e.List(context.Background(), models.Filter{}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalItems)
}

func TestSimulatedLatencyDoesNotSerializeCalls(t *testing.T) {
	b := bus.New()
	e := directory.NewEngine(b, 30*time.Millisecond)
	e.Seed(directory.SeedCatalog())

	start := time.Now()
	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := e.Get(context.Background(), 1)
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}
	// Four concurrent calls should take roughly one latency window, not four.
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestEnginesAreIsolated(t *testing.T) {
	b1, b2 := bus.New(), bus.New()
	e1 := directory.NewEngine(b1, 0)
	e1.Seed(directory.SeedCatalog())
	e2 := directory.NewEngine(b2, 0)

	_, err := e1.Create(context.Background(), validInput())
	require.NoError(t, err)

	result, err := e2.List(context.Background(), models.Filter{}, models.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalItems, "independent engines share no state")
}

func TestListOrEmptyFallback(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	ok := directory.ListOrEmpty(ctx, e, models.Filter{}, models.Pagination{})
	assert.Equal(t, 8, ok.TotalItems)

	empty := directory.ListOrEmpty(ctx, e, models.Filter{}, models.Pagination{Page: -1})
	assert.Zero(t, empty.TotalItems)
	assert.Zero(t, empty.TotalPages)
	assert.Empty(t, empty.Data)
	assert.False(t, empty.HasNext)
}
