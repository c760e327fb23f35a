package api

import (
	"net/http"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateCustomer crea un nuevo cliente
func (api *API) CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if !api.bindJSON(c, &req) {
		return
	}

	customer, err := api.customers.Create(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// ListCustomers lista los clientes; q filtra por nombre o email
func (api *API) ListCustomers(c *gin.Context) {
	customers, err := api.customers.List(c.Request.Context(), principalFrom(c), c.Query("q"))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": customers})
}

// GetCustomer obtiene un cliente
func (api *API) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, err := api.customers.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer reemplaza los datos de un cliente
func (api *API) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.CreateCustomerRequest
	if !api.bindJSON(c, &req) {
		return
	}

	customer, err := api.customers.Update(c.Request.Context(), principalFrom(c), id, &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer da de baja un cliente
func (api *API) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.customers.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		api.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateProduct crea un nuevo producto
func (api *API) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if !api.bindJSON(c, &req) {
		return
	}

	product, err := api.products.Create(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts lista el catálogo; q filtra por referencia o nombre
func (api *API) ListProducts(c *gin.Context) {
	products, err := api.products.List(c.Request.Context(), principalFrom(c), c.Query("q"))
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}

// GetProduct obtiene un producto
func (api *API) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := api.products.Get(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct reemplaza los datos de un producto
func (api *API) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req models.CreateProductRequest
	if !api.bindJSON(c, &req) {
		return
	}

	product, err := api.products.Update(c.Request.Context(), principalFrom(c), id, &req)
	if err != nil {
		api.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct da de baja un producto
func (api *API) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.products.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		api.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
