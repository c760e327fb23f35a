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
	"github.com/sirupsen/logrus"
)

const customerColumns = `
	id, user_id, company_name, contact_name, email, phone, address, city,
	tax_rc, tax_nif, tax_nis, tax_ai, is_active, created_at, updated_at`

// CustomerRepository maneja las operaciones de base de datos para Customer
type CustomerRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCustomerRepository crea una nueva instancia del repositorio
func NewCustomerRepository(db *DB, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea un nuevo cliente
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	customer.ID = uuid.New()
	customer.IsActive = true
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.UserID, customer.CompanyName, customer.ContactName,
		customer.Email, customer.Phone, customer.Address, customer.City,
		customer.TaxIDs.RC, customer.TaxIDs.NIF, customer.TaxIDs.NIS, customer.TaxIDs.AI,
		customer.IsActive, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating customer: %w", err)
	}

	return nil
}

// GetByID obtiene un cliente activo del usuario
func (r *CustomerRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND user_id = $2 AND is_active = true`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("customer", id)
		}
		return nil, fmt.Errorf("error querying customer: %w", err)
	}

	return customer, nil
}

// List obtiene los clientes activos del usuario, filtrando por nombre si se indica
func (r *CustomerRepository) List(ctx context.Context, userID uuid.UUID, search string) ([]models.Customer, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE user_id = $1 AND is_active = true
		  AND ($2 = '' OR company_name ILIKE '%' || $2 || '%' OR contact_name ILIKE '%' || $2 || '%')
		ORDER BY company_name`

	rows, err := r.db.QueryContext(ctx, query, userID, search)
	if err != nil {
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	return customers, rows.Err()
}

// Update actualiza un cliente existente
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	customer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers
		SET company_name = $1, contact_name = $2, email = $3, phone = $4, address = $5, city = $6,
		    tax_rc = $7, tax_nif = $8, tax_nis = $9, tax_ai = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.CompanyName, customer.ContactName, customer.Email, customer.Phone, customer.Address, customer.City,
		customer.TaxIDs.RC, customer.TaxIDs.NIF, customer.TaxIDs.NIS, customer.TaxIDs.AI, customer.UpdatedAt,
		customer.ID, customer.UserID,
	)
	if err != nil {
		return fmt.Errorf("error updating customer: %w", err)
	}

	return expectOneRow(result, "customer", customer.ID)
}

// Delete marca un cliente como inactivo
func (r *CustomerRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET is_active = false, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND is_active = true
	`, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("error deleting customer: %w", err)
	}

	return expectOneRow(result, "customer", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Address, &c.City,
		&c.TaxIDs.RC, &c.TaxIDs.NIF, &c.TaxIDs.NIS, &c.TaxIDs.AI, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// expectOneRow retorna NotFoundError si la sentencia no afectó filas
func expectOneRow(result sql.Result, entity string, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return commerce.NewNotFoundError(entity, id)
	}
	return nil
}
