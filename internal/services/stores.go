package services

import (
	"context"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
)

// CustomerStore persiste los clientes de un usuario
type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, userID uuid.UUID, search string) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ProductStore persiste el catálogo de productos
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
	List(ctx context.Context, userID uuid.UUID, search string) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DocumentStore persiste documentos con control de versión optimista
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, userID uuid.UUID, kind models.DocumentKind, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, filter database.DocumentFilter) ([]models.Document, int, error)
	ListSweepCandidates(ctx context.Context, now time.Time, limit int) ([]models.Document, error)
	Update(ctx context.Context, doc *models.Document, expectedVersion int) error
	UpdateStatus(ctx context.Context, doc *models.Document, expectedVersion int) error
	Delete(ctx context.Context, userID uuid.UUID, kind models.DocumentKind, id uuid.UUID) error
}

// ArtifactMetadataStore persiste los metadatos de los PDF generados
type ArtifactMetadataStore interface {
	Upsert(ctx context.Context, artifact *models.DocumentArtifact) error
	GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.DocumentArtifact, error)
}

// ObjectStore guarda el contenido binario de los PDF
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SubscriptionStore persiste planes, suscripciones y solicitudes
type SubscriptionStore interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	CreateRequest(ctx context.Context, req *models.SubscriptionRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*models.SubscriptionRequest, error)
	ListRequests(ctx context.Context, status models.SubscriptionRequestStatus) ([]models.SubscriptionRequest, error)
	Decide(ctx context.Context, req *models.SubscriptionRequest, sub *models.Subscription) error
}

// UserStore persiste usuarios
type UserStore interface {
	CreateWithAPIKey(ctx context.Context, user *models.User, key *models.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// APIKeyStore persiste y resuelve API keys
type APIKeyStore interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*models.APIKey, string, error)
	ResolvePrincipal(ctx context.Context, keyHash string) (*models.Principal, uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}

// Cache es el almacenamiento clave/valor con TTL (Redis en producción).
// Get retorna database.ErrCacheMiss cuando la clave no existe.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// DocumentNotifier avisa al cliente cuando un documento pasa a enviado
type DocumentNotifier interface {
	SendDocument(ctx context.Context, doc *models.Document, customer *models.Customer, totals models.Totals) error
}

// Compile-time checks de las implementaciones de producción
var (
	_ CustomerStore         = (*database.CustomerRepository)(nil)
	_ ProductStore          = (*database.ProductRepository)(nil)
	_ DocumentStore         = (*database.DocumentRepository)(nil)
	_ ArtifactMetadataStore = (*database.ArtifactRepository)(nil)
	_ ObjectStore           = (*database.ArtifactStore)(nil)
	_ SubscriptionStore     = (*database.SubscriptionRepository)(nil)
	_ UserStore             = (*database.UserRepository)(nil)
	_ APIKeyStore           = (*database.APIKeyRepository)(nil)
	_ Cache                 = (*database.Redis)(nil)
)
