package http

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/infra/productjson"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) handleListProducts(c *gin.Context) {
	products, err := s.catalog.List(c.Request.Context(), domain.ProductQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Name:     strings.TrimSpace(c.Query("name")),
		Filter:   c.Query("filter"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	product, ok := decodeProductBody(c)
	if !ok {
		return
	}
	created, err := s.catalog.Create(c.Request.Context(), product)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", "/api/products/"+created.ID.String())
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateProduct(c *gin.Context) {
	product, ok := decodeProductBody(c)
	if !ok {
		return
	}
	updated, err := s.catalog.Update(c.Request.Context(), product)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func decodeProductBody(c *gin.Context) (domain.Product, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, domain.PayloadError("The request body could not be read."))
		return domain.Product{}, false
	}
	product, err := productjson.DecodeProduct(raw)
	if err != nil {
		writeError(c, err)
		return domain.Product{}, false
	}
	return product, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		problem := domain.NewValidationError()
		problem.Add(name, "The value '"+c.Param(name)+"' is not valid.")
		writeError(c, problem)
		return uuid.Nil, false
	}
	return id, true
}
