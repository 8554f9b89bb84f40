package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Resolver returns the inventory service bound to the caller's staff
// credential.
type Resolver interface {
	InventoryFor(c echo.Context) (*Service, error)
}

type Handler struct {
	services Resolver
	validate *validator.Validate
}

func NewHandler(services Resolver) *Handler {
	return &Handler{services: services, validate: validator.New()}
}

func (h *Handler) service(c echo.Context) (*Service, error) {
	s, err := h.services.InventoryFor(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	return s, nil
}

func idParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func fail(c echo.Context, op, fallback string, err error) error {
	if errors.Is(err, models.ErrValidation) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if cafeapi.IsNotFound(err) {
		// already gone on the backend; not worth an error log
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: cafeapi.UserMessage(err, "Not found")})
	}
	c.Logger().Error("Handler."+op+": ", err)
	return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, fallback)})
}

func (h *Handler) ListItems(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	cat, err := s.Catalog(c.Request().Context())
	if err != nil {
		return fail(c, "ListItems", "Failed to load inventory", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) CreateItem(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	var req models.InventoryItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	item, err := s.CreateItem(c.Request().Context(), req)
	if err != nil {
		return fail(c, "CreateItem", "Failed to create item", err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid item id"})
	}
	var req models.InventoryItem
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	item, err := s.UpdateItem(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, "UpdateItem", "Failed to update item", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid item id"})
	}
	if err := s.DeleteItem(c.Request().Context(), id); err != nil {
		return fail(c, "DeleteItem", "Failed to delete item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListOrders(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	f := models.InventoryOrderFilter{Status: models.PurchaseStatus(c.QueryParam("status"))}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	page, err := s.ListOrders(c.Request().Context(), f)
	if err != nil {
		return fail(c, "ListOrders", "Failed to load purchase orders", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) CreateOrder(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	var req models.InventoryOrder
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	o, err := s.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return fail(c, "CreateOrder", "Failed to create purchase order", err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) UpdateOrder(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid purchase order id"})
	}
	var req models.InventoryOrder
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	o, err := s.UpdateOrder(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, "UpdateOrder", "Failed to update purchase order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	id, ok := idParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid purchase order id"})
	}
	if err := s.DeleteOrder(c.Request().Context(), id); err != nil {
		return fail(c, "DeleteOrder", "Failed to delete purchase order", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Insights(c echo.Context) error {
	s, err := h.service(c)
	if s == nil {
		return err
	}
	in, err := s.Insights(c.Request().Context())
	if err != nil {
		return fail(c, "Insights", "Failed to load inventory insights", err)
	}
	return c.JSON(http.StatusOK, in)
}
