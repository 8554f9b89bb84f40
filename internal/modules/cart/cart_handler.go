package cart

import (
	"errors"
	"net/http"

	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"

	"github.com/labstack/echo/v4"
)

// Resolver finds the cart belonging to the caller's browser session.
type Resolver interface {
	CartFor(c echo.Context) *Cart
}

// Handler handles HTTP requests for the customer cart.
type Handler struct {
	carts Resolver
}

func NewHandler(carts Resolver) *Handler {
	return &Handler{carts: carts}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.carts.CartFor(c).Snapshot())
}

func (h *Handler) AddItem(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if fields, err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Fields: fields})
	}

	crt := h.carts.CartFor(c)
	if _, err := crt.Add(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, crt.Snapshot())
}

func (h *Handler) UpdateItem(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}

	crt := h.carts.CartFor(c)
	if err := crt.UpdateQuantity(c.Param("lineId"), req.Quantity); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Cart line not found"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update cart"})
	}
	return c.JSON(http.StatusOK, crt.Snapshot())
}

func (h *Handler) RemoveItem(c echo.Context) error {
	crt := h.carts.CartFor(c)
	if err := crt.Remove(c.Param("lineId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Cart line not found"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update cart"})
	}
	return c.JSON(http.StatusOK, crt.Snapshot())
}

func (h *Handler) Clear(c echo.Context) error {
	h.carts.CartFor(c).Clear()
	return c.NoContent(http.StatusNoContent)
}
