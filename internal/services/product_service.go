package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

// ProductService maneja la lógica de negocio para Product
type ProductService struct {
	products ProductStore
	logger   *logrus.Logger
}

// NewProductService crea una nueva instancia del servicio
func NewProductService(products ProductStore, logger *logrus.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// Create crea un nuevo producto en el catálogo del usuario
func (s *ProductService) Create(ctx context.Context, p models.Principal, req *models.CreateProductRequest) (*models.ProductView, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{UserID: p.UserID}
	applyProductRequest(product, req)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"user_id":    p.UserID,
		"reference":  product.Reference,
	}).Info("Product created successfully")

	return productView(product), nil
}

// Get obtiene un producto con su indicador de stock bajo
func (s *ProductService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.ProductView, error) {
	product, err := s.products.GetByID(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	return productView(product), nil
}

// List lista el catálogo del usuario
func (s *ProductService) List(ctx context.Context, p models.Principal, search string) ([]models.ProductView, error) {
	products, err := s.products.List(ctx, p.UserID, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}

	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		views = append(views, *productView(&products[i]))
	}
	return views, nil
}

// Update reemplaza los datos de un producto; las líneas ya guardadas no cambian
func (s *ProductService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *models.CreateProductRequest) (*models.ProductView, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	applyProductRequest(product, req)

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("error updating product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"user_id":    p.UserID,
	}).Info("Product updated successfully")

	return productView(product), nil
}

// Delete da de baja un producto del catálogo
func (s *ProductService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.products.Delete(ctx, p.UserID, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"user_id":    p.UserID,
	}).Info("Product deleted")

	return nil
}

// Catalog construye el catálogo con los productos referenciados por las líneas
func (s *ProductService) Catalog(ctx context.Context, p models.Principal, items []models.LineItemRequest) (commerce.Catalog, error) {
	return loadCatalog(ctx, s.products, p.UserID, items)
}

func validateProductRequest(req *models.CreateProductRequest) error {
	if strings.TrimSpace(req.Reference) == "" {
		return &commerce.ValidationError{Field: "reference", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return &commerce.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if req.SalePrice.IsNegative() {
		return &commerce.ValidationError{Field: "sale_price", Reason: "must not be negative"}
	}
	if req.TaxRatePercent.IsNegative() || req.TaxRatePercent.GreaterThan(hundred) {
		return &commerce.ValidationError{Field: "tax_rate_percent", Reason: "must be between 0 and 100"}
	}
	if !commerce.FitsStorage(req.SalePrice) {
		return &commerce.ValidationError{Field: "sale_price", Reason: "too many decimal places"}
	}
	if !commerce.FitsStorage(req.TaxRatePercent) {
		return &commerce.ValidationError{Field: "tax_rate_percent", Reason: "too many decimal places"}
	}
	return nil
}

func applyProductRequest(product *models.Product, req *models.CreateProductRequest) {
	product.Reference = strings.TrimSpace(req.Reference)
	product.Name = strings.TrimSpace(req.Name)
	product.Unit = req.Unit
	if product.Unit == "" {
		product.Unit = "unit"
	}
	product.SalePrice = req.SalePrice
	product.TaxRatePercent = req.TaxRatePercent
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
}

func productView(product *models.Product) *models.ProductView {
	return &models.ProductView{Product: *product, LowStock: product.LowStock()}
}
