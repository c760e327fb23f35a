package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

// Documents es el servicio de documentos que consume la API
type Documents interface {
	Preview(ctx context.Context, p models.Principal, req *models.PreviewRequest) (*models.PreviewResponse, error)
	Create(ctx context.Context, p models.Principal, kind models.DocumentKind, req *models.DocumentRequest) (*models.DocumentResponse, error)
	Get(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) (*models.DocumentResponse, error)
	List(ctx context.Context, p models.Principal, kind models.DocumentKind, filter database.DocumentFilter) (*models.DocumentListResponse, error)
	Update(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID, req *models.DocumentRequest) (*models.DocumentResponse, error)
	ChangeStatus(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID, req *models.StatusChangeRequest) (*models.DocumentResponse, error)
	Delete(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) error
	Convert(ctx context.Context, p models.Principal, quoteID uuid.UUID, idempotencyKey string) (*models.ConvertResponse, error)
}

// Artifacts genera y descarga los PDF
type Artifacts interface {
	Generate(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) (*models.ArtifactResponse, error)
	Download(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) ([]byte, string, error)
}

// Customers es el servicio de clientes que consume la API
type Customers interface {
	Create(ctx context.Context, p models.Principal, req *models.CreateCustomerRequest) (*models.Customer, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, p models.Principal, search string) ([]models.Customer, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// Products es el servicio de catálogo que consume la API
type Products interface {
	Create(ctx context.Context, p models.Principal, req *models.CreateProductRequest) (*models.ProductView, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.ProductView, error)
	List(ctx context.Context, p models.Principal, search string) ([]models.ProductView, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *models.CreateProductRequest) (*models.ProductView, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// Subscriptions es el servicio de suscripciones que consume la API
type Subscriptions interface {
	Status(ctx context.Context, p models.Principal) (*models.SubscriptionStatusResponse, error)
	Plans(ctx context.Context) ([]models.Plan, error)
	RequestPlan(ctx context.Context, p models.Principal, planID uuid.UUID) (*models.SubscriptionRequest, error)
	ListRequests(ctx context.Context, status models.SubscriptionRequestStatus) (*models.SubscriptionRequestListResponse, error)
	Approve(ctx context.Context, admin models.Principal, requestID uuid.UUID) (*models.Subscription, error)
	Reject(ctx context.Context, admin models.Principal, requestID uuid.UUID) (*models.SubscriptionRequest, error)
}

// Users maneja el alta y la autenticación por API key
type Users interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.CreateUserResponse, error)
	Authenticate(ctx context.Context, apiKey string) (*models.Principal, error)
	Me(ctx context.Context, p models.Principal) (*models.User, error)
	CreateAPIKey(ctx context.Context, p models.Principal, name string) (*models.APIKey, string, error)
	ListAPIKeys(ctx context.Context, p models.Principal) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// API maneja todos los endpoints de la API
type API struct {
	documents     Documents
	artifacts     Artifacts
	customers     Customers
	products      Products
	subscriptions Subscriptions
	users         Users
	logger        *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	documents Documents,
	artifacts Artifacts,
	customers Customers,
	products Products,
	subscriptions Subscriptions,
	users Users,
	logger *logrus.Logger,
) *API {
	return &API{
		documents:     documents,
		artifacts:     artifacts,
		customers:     customers,
		products:      products,
		subscriptions: subscriptions,
		users:         users,
		logger:        logger,
	}
}

// RegisterRoutes registra las rutas /v1 en el router
func (api *API) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/v1")

	// Endpoints públicos
	v1.POST("/users", api.Register)

	authed := v1.Group("")
	authed.Use(api.AuthMiddleware())
	{
		authed.GET("/me", api.Me)
		authed.GET("/apikeys", api.ListAPIKeys)
		authed.POST("/apikeys", api.CreateAPIKey)
		authed.DELETE("/apikeys/:id", api.RevokeAPIKey)

		authed.GET("/customers", api.ListCustomers)
		authed.POST("/customers", api.CreateCustomer)
		authed.GET("/customers/:id", api.GetCustomer)
		authed.PUT("/customers/:id", api.UpdateCustomer)
		authed.DELETE("/customers/:id", api.DeleteCustomer)

		authed.GET("/products", api.ListProducts)
		authed.POST("/products", api.CreateProduct)
		authed.GET("/products/:id", api.GetProduct)
		authed.PUT("/products/:id", api.UpdateProduct)
		authed.DELETE("/products/:id", api.DeleteProduct)

		authed.POST("/totals/preview", api.PreviewTotals)

		for _, kind := range []models.DocumentKind{
			models.DocumentKindQuote,
			models.DocumentKindInvoice,
			models.DocumentKindDelivery,
		} {
			g := authed.Group("/" + kind.Collection())
			g.GET("", api.ListDocuments(kind))
			g.POST("", api.CreateDocument(kind))
			g.GET("/:id", api.GetDocument(kind))
			g.PUT("/:id", api.UpdateDocument(kind))
			g.DELETE("/:id", api.DeleteDocument(kind))
			g.PATCH("/:id/status", api.ChangeStatus(kind))
			g.POST("/:id/pdf", api.GeneratePDF(kind))
			g.GET("/:id/pdf", api.DownloadPDF(kind))
		}
		authed.POST("/quotes/:id/convert", api.ConvertQuote)

		authed.GET("/subscriptions", api.SubscriptionStatus)
		authed.GET("/subscriptions/plans", api.ListPlans)
		authed.POST("/subscriptions/requests", api.RequestPlan)

		admin := authed.Group("/admin")
		admin.Use(api.AdminOnly())
		{
			admin.GET("/subscription-requests", api.ListSubscriptionRequests)
			admin.POST("/subscription-requests/:id/approve", api.ApproveSubscriptionRequest)
			admin.POST("/subscription-requests/:id/reject", api.RejectSubscriptionRequest)
		}
	}
}

// AuthMiddleware resuelve el principal a partir del header X-API-Key
func (api *API) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewUnauthorizedError("API key required"))
			return
		}

		principal, err := api.users.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			var notFound *commerce.NotFoundError
			if errors.As(err, &notFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid API key"))
				return
			}
			api.logger.WithError(err).Error("Error authenticating API key")
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewInternalError("Error authenticating request"))
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// AdminOnly restringe el grupo a usuarios administradores
func (api *API) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principalFrom(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewForbiddenError("Admin access required"))
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}

// parseID parsea el parámetro :id; escribe el error y retorna false si no es un UUID
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: "id", Issue: "Must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON parsea el body; escribe el error y retorna false si no es válido
func (api *API) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		api.logger.WithError(err).WithField("path", c.FullPath()).Debug("Error binding request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return false
	}
	return true
}

// writeError traduce los errores de dominio a la respuesta HTTP estandarizada
func (api *API) writeError(c *gin.Context, err error) {
	var (
		validation *commerce.ValidationError
		transition *commerce.InvalidTransitionError
		conversion *commerce.ConversionError
		notFound   *commerce.NotFoundError
		conflict   *commerce.ConflictError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.NewValidationError("Validation failed", []models.ErrorDetail{
			{Field: validation.Field, Issue: validation.Reason},
		}))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(notFound.Error()))
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, models.NewConflictError(conflict.Error()))
	case errors.As(err, &transition):
		details := []models.ErrorDetail{
			{Field: "from", Issue: transition.From},
			{Field: "to", Issue: transition.To},
		}
		if transition.Reason != "" {
			details = append(details, models.ErrorDetail{Field: "reason", Issue: transition.Reason})
		}
		c.JSON(http.StatusConflict, models.NewInvalidTransitionError(transition.Error(), details))
	case errors.As(err, &conversion):
		c.JSON(http.StatusUnprocessableEntity, models.NewConversionError(conversion.Error()))
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError(err.Error()))
	default:
		api.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Internal server error"))
	}
}
