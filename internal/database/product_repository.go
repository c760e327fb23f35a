package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `
	id, user_id, reference, name, unit, sale_price, tax_rate_percent,
	stock_quantity, min_stock, is_active, created_at, updated_at`

// ProductRepository maneja las operaciones de base de datos para Product
type ProductRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewProductRepository crea una nueva instancia del repositorio
func NewProductRepository(db *DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea un nuevo producto; la referencia es única por usuario
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	product.ID = uuid.New()
	product.IsActive = true
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.UserID, product.Reference, product.Name, product.Unit,
		product.SalePrice, product.TaxRatePercent, product.StockQuantity, product.MinStock,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return commerce.NewConflictError("product", product.Reference, "reference already in use")
		}
		return fmt.Errorf("error creating product: %w", err)
	}

	return nil
}

// GetByID obtiene un producto activo del usuario
func (r *ProductRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Product, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND user_id = $2 AND is_active = true`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return product, nil
}

// GetByIDs obtiene los productos activos del usuario cuyos ids se indican
func (r *ProductRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1 AND is_active = true AND id = ANY($2::uuid[])`

	return r.queryProducts(ctx, query, userID, pq.Array(uuidStrings(ids)))
}

// List obtiene los productos activos del usuario, filtrando por referencia o nombre
func (r *ProductRepository) List(ctx context.Context, userID uuid.UUID, search string) ([]models.Product, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE user_id = $1 AND is_active = true
		  AND ($2 = '' OR reference ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		ORDER BY name`

	return r.queryProducts(ctx, query, userID, search)
}

// Update actualiza un producto existente
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	product.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET reference = $1, name = $2, unit = $3, sale_price = $4, tax_rate_percent = $5,
		    stock_quantity = $6, min_stock = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Reference, product.Name, product.Unit, product.SalePrice, product.TaxRatePercent,
		product.StockQuantity, product.MinStock, product.UpdatedAt,
		product.ID, product.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return commerce.NewConflictError("product", product.Reference, "reference already in use")
		}
		return fmt.Errorf("error updating product: %w", err)
	}

	return expectOneRow(result, "product", product.ID)
}

// Delete marca un producto como inactivo; las líneas ya enlazadas conservan sus valores
func (r *ProductRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET is_active = false, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND is_active = true
	`, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}

	return expectOneRow(result, "product", id)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Reference, &p.Name, &p.Unit, &p.SalePrice, &p.TaxRatePercent,
		&p.StockQuantity, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
