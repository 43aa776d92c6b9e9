package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// listWhere applies every optional filter with the parameter-or-skip
// pattern; an empty/NULL parameter disables its predicate.
const listWhere = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
        AND ($2 = '' OR category = $2)
        AND ($3::numeric IS NULL OR price >= $3)
        AND ($4::numeric IS NULL OR price <= $4)
        AND ($5::boolean IS NULL OR active = $5)`

// List returns one page of filtered products plus the total count after
// filtering. Page is assumed normalized (>= 1) by the caller.
func (r *ProductRepository) List(ctx context.Context, filter models.Filter, page models.Pagination) ([]models.Product, int, error) {
	offset := (page.Page - 1) * page.PageSize

	var minPrice, maxPrice *string
	if filter.MinPrice != nil {
		s := filter.MinPrice.String()
		minPrice = &s
	}
	if filter.MaxPrice != nil {
		s := filter.MaxPrice.String()
		maxPrice = &s
	}

	countQuery := `SELECT COUNT(1) FROM products ` + listWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery,
		filter.Search, string(filter.Category), minPrice, maxPrice, filter.Active); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT * FROM products ` + listWhere + `
        ORDER BY id LIMIT $6 OFFSET $7`
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, listQuery,
		filter.Search, string(filter.Category), minPrice, maxPrice, filter.Active,
		page.PageSize, offset); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID returns a single product by id, or sql.ErrNoRows.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the product and fills its server-assigned id and
// timestamps from the database.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (name, description, price, category, image_url, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update persists the merged product, stamping updated_at in the database
// and reading it back. Returns sql.ErrNoRows when the id vanished between
// read and write.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products SET
            name = $2,
            description = $3,
            price = $4,
            category = $5,
            image_url = $6,
            active = $7,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`
	return r.db.QueryRowxContext(ctx, q,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Active,
	).Scan(&p.UpdatedAt)
}

// Delete removes a product. Returns sql.ErrNoRows when the id is absent.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
