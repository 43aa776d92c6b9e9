package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates the supported product categories.
type Category string

const (
	CategoryEletronicos Category = "ELETRONICOS"
	CategoryRoupas      Category = "ROUPAS"
	CategoryCasa        Category = "CASA"
	CategoryEsportes    Category = "ESPORTES"
	CategoryLivros      Category = "LIVROS"
	CategoryOutros      Category = "OUTROS"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryEletronicos,
	CategoryRoupas,
	CategoryCasa,
	CategoryEsportes,
	CategoryLivros,
	CategoryOutros,
}

// Valid reports whether c is a member of the category enumeration.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// CategoryNames returns the enumeration as a comma-separated string for
// validation messages.
func CategoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Product represents one catalog entry.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    Category        `db:"category" json:"category"`
	ImageURL    string          `db:"image_url" json:"imageUrl,omitempty"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// CreateInput carries the fields a caller supplies when creating a product.
// Active defaults to true when omitted.
type CreateInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    Category         `json:"category"`
	ImageURL    string           `json:"imageUrl"`
	Active      *bool            `json:"active"`
}

// UpdateInput is a partial patch: nil fields leave the stored value
// unchanged. ID and CreatedAt are never touched by an update.
type UpdateInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *Category        `json:"category"`
	ImageURL    *string          `json:"imageUrl"`
	Active      *bool            `json:"active"`
}

// IsActive resolves the create input's active flag with its default.
func (in *CreateInput) IsActive() bool {
	if in.Active == nil {
		return true
	}
	return *in.Active
}

// Apply merges the patch into p. Only non-nil fields are copied; the
// caller is responsible for stamping UpdatedAt.
func (in *UpdateInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}
