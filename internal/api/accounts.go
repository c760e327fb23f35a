package api

import (
	"net/http"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

// Register da de alta un usuario y retorna su primera API key
func (api *API) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if !api.bindJSON(c, &req) {
		return
	}

	response, err := api.users.Register(c.Request.Context(), &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Me obtiene el usuario autenticado
func (api *API) Me(c *gin.Context) {
	user, err := api.users.Me(c.Request.Context(), principalFrom(c))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateAPIKey emite una API key adicional
func (api *API) CreateAPIKey(c *gin.Context) {
	var req models.CreateAPIKeyRequest
	if c.Request.ContentLength > 0 && !api.bindJSON(c, &req) {
		return
	}

	key, plain, err := api.users.CreateAPIKey(c.Request.Context(), principalFrom(c), req.Name)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIKeyResponse{ID: key.ID, Name: key.Name, APIKey: plain})
}

// ListAPIKeys lista las API keys del usuario
func (api *API) ListAPIKeys(c *gin.Context) {
	keys, err := api.users.ListAPIKeys(c.Request.Context(), principalFrom(c))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": keys})
}

// RevokeAPIKey desactiva una API key
func (api *API) RevokeAPIKey(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.users.RevokeAPIKey(c.Request.Context(), principalFrom(c), id); err != nil {
		api.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubscriptionStatus retorna la vigencia de la suscripción del usuario
func (api *API) SubscriptionStatus(c *gin.Context) {
	status, err := api.subscriptions.Status(c.Request.Context(), principalFrom(c))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListPlans lista los planes disponibles
func (api *API) ListPlans(c *gin.Context) {
	plans, err := api.subscriptions.Plans(c.Request.Context())
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": plans})
}

// RequestPlan registra una solicitud de plan
func (api *API) RequestPlan(c *gin.Context) {
	var req models.CreateSubscriptionRequest
	if !api.bindJSON(c, &req) {
		return
	}

	request, err := api.subscriptions.RequestPlan(c.Request.Context(), principalFrom(c), req.PlanID)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListSubscriptionRequests lista las solicitudes de plan (admin)
func (api *API) ListSubscriptionRequests(c *gin.Context) {
	status := models.SubscriptionRequestStatus(c.Query("status"))

	response, err := api.subscriptions.ListRequests(c.Request.Context(), status)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ApproveSubscriptionRequest aprueba una solicitud (admin)
func (api *API) ApproveSubscriptionRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sub, err := api.subscriptions.Approve(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// RejectSubscriptionRequest rechaza una solicitud (admin)
func (api *API) RejectSubscriptionRequest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := api.subscriptions.Reject(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
