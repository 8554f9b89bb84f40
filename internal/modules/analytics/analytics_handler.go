package analytics

import (
	"bytes"
	"errors"
	"net/http"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/models"

	"github.com/labstack/echo/v4"
)

type Resolver interface {
	AnalyticsFor(c echo.Context) (*Service, error)
}

type Handler struct {
	services Resolver
}

func NewHandler(services Resolver) *Handler {
	return &Handler{services: services}
}

func (h *Handler) Overview(c echo.Context) error {
	s, err := h.services.AnalyticsFor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	ov, err := s.Overview(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.Overview: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Failed to load analytics")})
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) Export(c echo.Context) error {
	s, err := h.services.AnalyticsFor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	var buf bytes.Buffer
	name, err := s.Export(&buf, format)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Load analytics before exporting"})
		}
		c.Logger().Error("Handler.ExportAnalytics: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to export analytics"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
