package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio del catálogo de un usuario
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Reference      string          `json:"reference" db:"reference"`
	Name           string          `json:"name" db:"name"`
	Unit           string          `json:"unit" db:"unit"`
	SalePrice      decimal.Decimal `json:"sale_price" db:"sale_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	StockQuantity  decimal.Decimal `json:"stock_quantity" db:"stock_quantity"`
	MinStock       decimal.Decimal `json:"min_stock" db:"min_stock"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// LowStock indica si el stock está en o por debajo del mínimo
func (p Product) LowStock() bool {
	return p.StockQuantity.LessThanOrEqual(p.MinStock)
}

// CreateProductRequest representa el request para crear/actualizar un producto
type CreateProductRequest struct {
	Reference      string           `json:"reference" binding:"required"`
	Name           string           `json:"name" binding:"required"`
	Unit           string           `json:"unit"`
	SalePrice      decimal.Decimal  `json:"sale_price"`
	TaxRatePercent decimal.Decimal  `json:"tax_rate_percent"`
	StockQuantity  *decimal.Decimal `json:"stock_quantity,omitempty"`
	MinStock       *decimal.Decimal `json:"min_stock,omitempty"`
}

// ProductView representa un producto con sus campos derivados
type ProductView struct {
	Product
	LowStock bool `json:"low_stock"`
}

// ProductResponse representa la respuesta al crear un producto
type ProductResponse struct {
	ID string `json:"id"`
}
