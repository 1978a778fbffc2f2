package http

import (
	"encoding/json"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) handleListCarts(c *gin.Context) {
	carts, err := s.carts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if s.notModified(c, carts) {
		return
	}
	c.JSON(http.StatusOK, carts)
}

func (s *Server) handleGetCart(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "customerId")
	if !ok {
		return
	}
	cart, err := s.carts.Get(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if s.notModified(c, cart.Version) {
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) handleCreateCart(c *gin.Context) {
	cart, ok := decodeCartBody(c)
	if !ok {
		return
	}
	created, err := s.carts.Create(c.Request.Context(), cart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", "/api/shoppingcart/"+created.CustomerID.String())
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateCart(c *gin.Context) {
	cart, ok := decodeCartBody(c)
	if !ok {
		return
	}
	updated, err := s.carts.Update(c.Request.Context(), cart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteCart(c *gin.Context) {
	customerID, ok := parseUUIDParam(c, "customerId")
	if !ok {
		return
	}
	if err := s.carts.Delete(c.Request.Context(), customerID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCheckout(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customerId"))
	if err != nil {
		problem := domain.NewValidationError()
		problem.Add("customerId", "The customerId query parameter must be a UUID.")
		writeError(c, problem)
		return
	}
	done, err := s.carts.Checkout(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, done)
}

func decodeCartBody(c *gin.Context) (domain.ShoppingCart, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, domain.PayloadError("The request body could not be read."))
		return domain.ShoppingCart{}, false
	}
	var cart domain.ShoppingCart
	if err := json.Unmarshal(raw, &cart); err != nil {
		writeError(c, domain.PayloadError("The request body is not a valid shopping cart."))
		return domain.ShoppingCart{}, false
	}
	return cart, true
}
