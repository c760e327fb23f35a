package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CustomerService maneja la lógica de negocio para Customer
type CustomerService struct {
	customers CustomerStore
	logger    *logrus.Logger
}

// NewCustomerService crea una nueva instancia del servicio
func NewCustomerService(customers CustomerStore, logger *logrus.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		logger:    logger,
	}
}

// Create crea un nuevo cliente para el usuario autenticado
func (s *CustomerService) Create(ctx context.Context, p models.Principal, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if err := validateCustomerRequest(req); err != nil {
		return nil, err
	}

	customer := &models.Customer{UserID: p.UserID}
	applyCustomerRequest(customer, req)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("error creating customer: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id":  customer.ID,
		"user_id":      p.UserID,
		"company_name": customer.CompanyName,
	}).Info("Customer created successfully")

	return customer, nil
}

// Get obtiene un cliente del usuario
func (s *CustomerService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Customer, error) {
	return s.customers.GetByID(ctx, p.UserID, id)
}

// List lista los clientes del usuario, opcionalmente filtrados por texto
func (s *CustomerService) List(ctx context.Context, p models.Principal, search string) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx, p.UserID, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	return customers, nil
}

// Update reemplaza los datos de un cliente
func (s *CustomerService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if err := validateCustomerRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	applyCustomerRequest(customer, req)

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("error updating customer: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": customer.ID,
		"user_id":     p.UserID,
	}).Info("Customer updated successfully")

	return customer, nil
}

// Delete da de baja un cliente; los documentos existentes lo conservan
func (s *CustomerService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, p.UserID, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
		"user_id":     p.UserID,
	}).Info("Customer deleted")

	return nil
}

func validateCustomerRequest(req *models.CreateCustomerRequest) error {
	if strings.TrimSpace(req.CompanyName) == "" {
		return &commerce.ValidationError{Field: "company_name", Reason: "must not be empty"}
	}
	if req.Email != nil && *req.Email != "" && !strings.Contains(*req.Email, "@") {
		return &commerce.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	return nil
}

func applyCustomerRequest(customer *models.Customer, req *models.CreateCustomerRequest) {
	customer.CompanyName = strings.TrimSpace(req.CompanyName)
	customer.ContactName = req.ContactName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.City = req.City
	customer.TaxIDs = req.TaxIDs
}
