package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultAPIKeyName = "default"

// UserService maneja el alta de usuarios y sus API keys
type UserService struct {
	users       UserStore
	apiKeys     APIKeyStore
	adminEmails map[string]bool
	logger      *logrus.Logger
}

// NewUserService crea una nueva instancia del servicio.
// Los emails de adminEmails se registran como administradores.
func NewUserService(users UserStore, apiKeys APIKeyStore, adminEmails []string, logger *logrus.Logger) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &UserService{
		users:       users,
		apiKeys:     apiKeys,
		adminEmails: admins,
		logger:      logger,
	}
}

// Register crea el usuario con su primera API key; la clave en claro solo se retorna aquí
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &commerce.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &commerce.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		IsAdmin:   s.adminEmails[email],
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	key, plain, err := database.NewAPIKey(user.ID, defaultAPIKeyName)
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateWithAPIKey(ctx, user, key); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
	}).Info("User registered successfully")

	return &models.CreateUserResponse{ID: user.ID, APIKey: plain}, nil
}

// Authenticate resuelve el principal dueño de la API key
func (s *UserService) Authenticate(ctx context.Context, apiKey string) (*models.Principal, error) {
	principal, keyID, err := s.apiKeys.ResolvePrincipal(ctx, database.HashAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if err := s.apiKeys.UpdateLastUsed(ctx, keyID); err != nil {
		s.logger.WithError(err).WithField("key_id", keyID).Warn("Failed to update API key last use")
	}

	return principal, nil
}

// Me obtiene el usuario autenticado
func (s *UserService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	return s.users.GetByID(ctx, p.UserID)
}

// CreateAPIKey emite una nueva API key para el usuario
func (s *UserService) CreateAPIKey(ctx context.Context, p models.Principal, name string) (*models.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultAPIKeyName
	}

	key, plain, err := s.apiKeys.Create(ctx, p.UserID, name)
	if err != nil {
		return nil, "", fmt.Errorf("error creating API key: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": p.UserID,
		"key_id":  key.ID,
	}).Info("API key created")

	return key, plain, nil
}

// ListAPIKeys lista las API keys del usuario sin exponer los hashes
func (s *UserService) ListAPIKeys(ctx context.Context, p models.Principal) ([]models.APIKey, error) {
	return s.apiKeys.ListByUser(ctx, p.UserID)
}

// RevokeAPIKey desactiva una API key del usuario
func (s *UserService) RevokeAPIKey(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := s.apiKeys.Deactivate(ctx, p.UserID, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": p.UserID,
		"key_id":  id,
	}).Info("API key revoked")

	return nil
}
