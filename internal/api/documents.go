package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PreviewTotals valora una lista de líneas sin guardar
func (api *API) PreviewTotals(c *gin.Context) {
	var req models.PreviewRequest
	if !api.bindJSON(c, &req) {
		return
	}

	response, err := api.documents.Preview(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListDocuments lista los documentos del tipo con filtros y paginación
func (api *API) ListDocuments(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := database.DocumentFilter{
			Status:   models.DocumentStatus(c.Query("status")),
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		}
		if raw := c.Query("customer_id"); raw != "" {
			customerID, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid customer filter", []models.ErrorDetail{
					{Field: "customer_id", Issue: "Must be a valid UUID"},
				}))
				return
			}
			filter.CustomerID = &customerID
		}

		response, err := api.documents.List(c.Request.Context(), principalFrom(c), kind, filter)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// CreateDocument crea un documento del tipo
func (api *API) CreateDocument(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DocumentRequest
		if !api.bindJSON(c, &req) {
			return
		}

		response, err := api.documents.Create(c.Request.Context(), principalFrom(c), kind, &req)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.Header("Location", response.Links.Self)
		c.JSON(http.StatusCreated, response)
	}
}

// GetDocument obtiene un documento del tipo
func (api *API) GetDocument(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		response, err := api.documents.Get(c.Request.Context(), principalFrom(c), kind, id)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// UpdateDocument reemplaza cabecera y líneas de un documento
func (api *API) UpdateDocument(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req models.DocumentRequest
		if !api.bindJSON(c, &req) {
			return
		}

		response, err := api.documents.Update(c.Request.Context(), principalFrom(c), kind, id, &req)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// DeleteDocument elimina un documento
func (api *API) DeleteDocument(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		if err := api.documents.Delete(c.Request.Context(), principalFrom(c), kind, id); err != nil {
			api.writeError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// ChangeStatus aplica un cambio de estado con su payload
func (api *API) ChangeStatus(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req models.StatusChangeRequest
		if !api.bindJSON(c, &req) {
			return
		}

		response, err := api.documents.ChangeStatus(c.Request.Context(), principalFrom(c), kind, id, &req)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// ConvertQuote convierte un presupuesto en factura; respeta el header Idempotency-Key
func (api *API) ConvertQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	response, err := api.documents.Convert(c.Request.Context(), principalFrom(c), id, c.GetHeader("Idempotency-Key"))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GeneratePDF genera y guarda el PDF del documento
func (api *API) GeneratePDF(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		response, err := api.artifacts.Generate(c.Request.Context(), principalFrom(c), kind, id)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, response)
	}
}

// DownloadPDF descarga el PDF guardado del documento
func (api *API) DownloadPDF(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		data, fileName, err := api.artifacts.Download(c.Request.Context(), principalFrom(c), kind, id)
		if err != nil {
			api.writeError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", fileName))
		c.Data(http.StatusOK, "application/pdf", data)
	}
}

// queryInt lee un entero de la query; 0 si falta o no es válido
func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
