package commerce

import (
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog resuelve productos por id
type Catalog interface {
	Lookup(id uuid.UUID) (models.Product, bool)
}

// MapCatalog es un Catalog en memoria
type MapCatalog map[uuid.UUID]models.Product

// NewMapCatalog indexa los productos por id
func NewMapCatalog(products []models.Product) MapCatalog {
	c := make(MapCatalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Lookup retorna el producto si existe
func (c MapCatalog) Lookup(id uuid.UUID) (models.Product, bool) {
	p, ok := c[id]
	return p, ok
}

// BindProduct copia descripción, precio y tasa del producto a la línea.
// Si el producto no existe la línea queda como manual y se retorna sin cambios.
// Los cambios posteriores del catálogo no afectan a la línea ya enlazada.
func BindProduct(item models.LineItem, productID uuid.UUID, catalog Catalog) models.LineItem {
	product, ok := catalog.Lookup(productID)
	if !ok {
		return item
	}

	bound := item.Clone()
	ref := product.ID
	bound.ProductID = &ref
	bound.Description = product.Name
	bound.UnitPrice = product.SalePrice
	bound.TaxRatePercent = product.TaxRatePercent
	if bound.Quantity.IsZero() {
		bound.Quantity = decimal.NewFromInt(1)
	}
	return bound
}

// BuildLineItem arma una línea desde el request: enlaza el producto cuando se indica
// y luego aplica los valores explícitos del request.
func BuildLineItem(req models.LineItemRequest, catalog Catalog) models.LineItem {
	var item models.LineItem
	if req.ProductID != nil && catalog != nil {
		item = BindProduct(item, *req.ProductID, catalog)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.TaxRatePercent != nil {
		item.TaxRatePercent = *req.TaxRatePercent
	}
	return item
}

// BuildLineItems arma las líneas del request y las numera en orden
func BuildLineItems(reqs []models.LineItemRequest, catalog Catalog) []models.LineItem {
	items := make([]models.LineItem, 0, len(reqs))
	for i, r := range reqs {
		item := BuildLineItem(r, catalog)
		item.LineNo = i + 1
		items = append(items, item)
	}
	return items
}
