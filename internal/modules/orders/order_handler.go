package orders

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Resolver finds the board belonging to the logged-in staff member.
type Resolver interface {
	BoardFor(c echo.Context) (*Board, error)
}

// Handler handles HTTP requests for the staff order board.
type Handler struct {
	boards   Resolver
	validate *validator.Validate
}

func NewHandler(boards Resolver) *Handler {
	return &Handler{boards: boards, validate: validator.New()}
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed preparing ready delivered cancelled"`
}

type paymentRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card upi online"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) board(c echo.Context) (*Board, error) {
	b, err := h.boards.BoardFor(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	return b, nil
}

func orderID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// fail maps board errors onto responses.
func fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found on the current page"})
	case errors.Is(err, models.ErrTerminalStatus):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Delivered and cancelled orders cannot be changed"})
	case errors.Is(err, models.ErrUpdateInFlight):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "This order is already being updated"})
	case errors.Is(err, models.ErrReasonRequired):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Please provide a cancellation reason"})
	case errors.Is(err, models.ErrPaymentMethodRequired):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Please choose a payment method"})
	case errors.Is(err, models.ErrValidation):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	case errors.Is(err, models.ErrMailerDisabled):
		return c.JSON(http.StatusNotImplemented, models.ErrorResponse{Message: "Receipt e-mail is not configured"})
	case errors.Is(err, models.ErrWorkflowClosed):
		return c.JSON(http.StatusGone, models.ErrorResponse{Message: "Session ended"})
	}
	c.Logger().Error("Handler."+op+": ", err)
	return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Request failed")})
}

// List returns the board. ?page=N navigates; without it the first call
// loads page 1 and later calls return what is already loaded.
func (h *Handler) List(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, convErr := strconv.Atoi(raw)
		if convErr != nil || page < 1 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid page"})
		}
		if err := b.GoToPage(c.Request().Context(), page); err != nil {
			return fail(c, "List", err)
		}
	} else if !b.State().Loaded {
		if err := b.Load(c.Request().Context(), 1); err != nil {
			return fail(c, "List", err)
		}
	}
	return c.JSON(http.StatusOK, b.State())
}

func (h *Handler) SetFilters(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	var f Filters
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(f); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	b.SetFilters(f)
	return c.JSON(http.StatusAccepted, b.State())
}

func (h *Handler) Get(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	o, err := b.Select(id)
	if err != nil {
		return fail(c, "Get", err)
	}
	return c.JSON(http.StatusOK, OrderView{Order: *o, Transitions: AvailableTransitions(o.OrderStatus)})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if err := b.ChangeStatus(c.Request().Context(), id, req.Status); err != nil {
		return fail(c, "UpdateStatus", err)
	}
	return c.JSON(http.StatusOK, b.State())
}

func (h *Handler) UpdatePayment(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if err := b.ChangePayment(c.Request().Context(), id, req.PaymentStatus, req.PaymentMethod); err != nil {
		return fail(c, "UpdatePayment", err)
	}
	return c.JSON(http.StatusOK, b.State())
}

func (h *Handler) Cancel(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := b.Cancel(c.Request().Context(), id, req.Reason); err != nil {
		return fail(c, "Cancel", err)
	}
	return c.JSON(http.StatusOK, b.State())
}

func (h *Handler) Receipt(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	var buf bytes.Buffer
	name, err := b.Receipt(id, &buf)
	if err != nil {
		return fail(c, "Receipt", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *Handler) EmailReceipt(c echo.Context) error {
	b, err := h.board(c)
	if b == nil {
		return err
	}
	id, ok := orderID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order id"})
	}
	if err := b.EmailReceipt(c.Request().Context(), id); err != nil {
		return fail(c, "EmailReceipt", err)
	}
	return c.NoContent(http.StatusAccepted)
}
