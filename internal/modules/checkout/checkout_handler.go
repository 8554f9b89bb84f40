package checkout

import (
	"errors"
	"net/http"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Resolver finds the workflow belonging to the caller's browser session.
type Resolver interface {
	WorkflowFor(c echo.Context) *Workflow
}

// Handler handles HTTP requests for checkout.
type Handler struct {
	flows    Resolver
	validate *validator.Validate
}

func NewHandler(flows Resolver) *Handler {
	return &Handler{flows: flows, validate: validator.New()}
}

type fieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type payRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
}

func (h *Handler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.flows.WorkflowFor(c).State())
}

func (h *Handler) Open(c echo.Context) error {
	wf := h.flows.WorkflowFor(c)
	if err := wf.Open(); err != nil {
		return c.JSON(http.StatusGone, models.ErrorResponse{Message: "Checkout is no longer available"})
	}
	return c.JSON(http.StatusOK, wf.State())
}

func (h *Handler) SetField(c echo.Context) error {
	var req fieldRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	wf := h.flows.WorkflowFor(c)
	if err := wf.SetField(req.Field, req.Value); err != nil {
		if errors.Is(err, models.ErrWorkflowClosed) {
			return c.JSON(http.StatusGone, models.ErrorResponse{Message: "Checkout is no longer available"})
		}
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, wf.State())
}

func (h *Handler) Submit(c echo.Context) error {
	wf := h.flows.WorkflowFor(c)
	conf, err := wf.Submit(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Message: "Please correct the highlighted fields",
				Fields:  wf.State().Errors,
			})
		case errors.Is(err, models.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: MsgEmptyCart})
		case errors.Is(err, models.ErrSubmitInFlight):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Your order is already being placed"})
		case errors.Is(err, models.ErrWorkflowClosed):
			return c.JSON(http.StatusGone, models.ErrorResponse{Message: "Checkout is no longer available"})
		}
		c.Logger().Error("Handler.Submit: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: failureMessage(err)})
	}
	return c.JSON(http.StatusCreated, conf)
}

func (h *Handler) Cancel(c echo.Context) error {
	wf := h.flows.WorkflowFor(c)
	wf.Cancel()
	return c.JSON(http.StatusOK, wf.State())
}

func (h *Handler) Acknowledge(c echo.Context) error {
	wf := h.flows.WorkflowFor(c)
	wf.Acknowledge()
	return c.JSON(http.StatusOK, wf.State())
}

func (h *Handler) Pay(c echo.Context) error {
	var req payRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	conf, err := h.flows.WorkflowFor(c).PayOnline(c.Request().Context(), req.PaymentMethodID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOnlinePaymentDisabled):
			return c.JSON(http.StatusNotImplemented, models.ErrorResponse{Message: "Online payment is not available"})
		case errors.Is(err, models.ErrNoConfirmation):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "There is no unpaid order to pay for"})
		case errors.Is(err, models.ErrWorkflowClosed):
			return c.JSON(http.StatusGone, models.ErrorResponse{Message: "Checkout is no longer available"})
		}
		c.Logger().Error("Handler.Pay: ", err)
		return c.JSON(http.StatusPaymentRequired, models.ErrorResponse{Message: MsgPaymentFailed})
	}
	return c.JSON(http.StatusOK, conf)
}
