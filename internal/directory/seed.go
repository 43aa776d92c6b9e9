package directory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// SeedCatalog returns the fixed startup catalog for the in-memory engine:
// eight products, seven of them active, including exactly three active
// ELETRONICOS entries. The dataset lives for the process lifetime and is
// never persisted.
func SeedCatalog() []models.Product {
	now := time.Now()
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	seed := []models.Product{
		{
			ID:          1,
			Name:        "Notebook Gamer 15\"",
			Description: "Notebook com placa de video dedicada e 16GB de RAM",
			Price:       price("4599.90"),
			Category:    models.CategoryEletronicos,
			ImageURL:    "https://cdn.vitrineshop.dev/img/notebook-gamer.jpg",
			Active:      true,
		},
		{
			ID:          2,
			Name:        "Smartphone 128GB",
			Description: "Tela AMOLED de 6.1 polegadas, camera dupla",
			Price:       price("1899.00"),
			Category:    models.CategoryEletronicos,
			ImageURL:    "https://cdn.vitrineshop.dev/img/smartphone-128.jpg",
			Active:      true,
		},
		{
			ID:          3,
			Name:        "Fone de Ouvido Bluetooth",
			Description: "Cancelamento ativo de ruido, 30h de bateria",
			Price:       price("349.90"),
			Category:    models.CategoryEletronicos,
			Active:      true,
		},
		{
			ID:          4,
			Name:        "Monitor 4K 27\"",
			Description: "Painel IPS com HDR, fora de linha",
			Price:       price("2299.00"),
			Category:    models.CategoryEletronicos,
			Active:      false,
		},
		{
			ID:          5,
			Name:        "Camiseta Basica Algodao",
			Description: "100% algodao, varias cores",
			Price:       price("49.90"),
			Category:    models.CategoryRoupas,
			Active:      true,
		},
		{
			ID:          6,
			Name:        "Tenis de Corrida Leve",
			Description: "Amortecimento responsivo para treinos diarios",
			Price:       price("399.90"),
			Category:    models.CategoryEsportes,
			Active:      true,
		},
		{
			ID:          7,
			Name:        "Cafeteira Eletrica 1.2L",
			Description: "Sistema corta-pingos e placa aquecedora",
			Price:       price("189.90"),
			Category:    models.CategoryCasa,
			Active:      true,
		},
		{
			ID:          8,
			Name:        "O Senhor dos Aneis - Box",
			Description: "Trilogia completa em capa dura",
			Price:       price("159.90"),
			Category:    models.CategoryLivros,
			Active:      true,
		},
	}
	for i := range seed {
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
	}
	return seed
}
