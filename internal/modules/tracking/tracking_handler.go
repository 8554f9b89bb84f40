package tracking

import (
	"errors"
	"net/http"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Track serves GET /api/track?phone=&name=&includeCancelled=.
func (h *Handler) Track(c echo.Context) error {
	var q Query
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid query"})
	}
	orders, err := h.svc.Search(c.Request().Context(), q)
	if err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: fe.Message,
				Fields:  map[string]string{fe.Field: fe.Message},
			})
		}
		c.Logger().Error("Handler.Track: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Failed to fetch orders")})
	}
	return c.JSON(http.StatusOK, orders)
}
