package feedback

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"

	"github.com/labstack/echo/v4"
)

// Resolver finds the feedback table of the logged-in staff member.
type Resolver interface {
	ViewerFor(c echo.Context) (*Viewer, error)
}

type Handler struct {
	svc     *Service
	viewers Resolver
}

func NewHandler(svc *Service, viewers Resolver) *Handler {
	return &Handler{svc: svc, viewers: viewers}
}

func (h *Handler) Submit(c echo.Context) error {
	var req models.FeedbackSubmission
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.svc.Submit(c.Request().Context(), req); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: fe.Message,
				Fields:  map[string]string{fe.Field: fe.Message},
			})
		}
		c.Logger().Error("Handler.SubmitFeedback: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Failed to submit feedback")})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Thank you for your feedback!"})
}

func (h *Handler) viewer(c echo.Context) (*Viewer, error) {
	v, err := h.viewers.ViewerFor(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	return v, nil
}

func (h *Handler) List(c echo.Context) error {
	v, err := h.viewer(c)
	if v == nil {
		return err
	}
	f := models.FeedbackFilter{Category: c.QueryParam("category")}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Rating, _ = strconv.Atoi(c.QueryParam("rating"))

	page, err := v.Load(c.Request().Context(), f)
	if err != nil {
		c.Logger().Error("Handler.ListFeedback: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Failed to load feedback")})
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Stats(c echo.Context) error {
	v, err := h.viewer(c)
	if v == nil {
		return err
	}
	st, err := v.Stats(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.FeedbackStats: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Failed to load feedback stats")})
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Export(c echo.Context) error {
	v, err := h.viewer(c)
	if v == nil {
		return err
	}
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	var buf bytes.Buffer
	name, err := v.Export(&buf, format)
	if err != nil {
		c.Logger().Error("Handler.ExportFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to export feedback"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
