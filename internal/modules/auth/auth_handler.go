package auth

import (
	"errors"
	"net/http"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Username and password are required"})
	}
	res, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Username and password are required"})
		case cafeapi.IsUnauthorized(err):
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid username or password"})
		}
		c.Logger().Error("Handler.Login: ", err)
		return c.JSON(cafeapi.HTTPStatus(err), models.ErrorResponse{Message: cafeapi.UserMessage(err, "Login failed")})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Logout(c echo.Context) error {
	claims, err := ClaimsFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
	}
	if err := h.svc.Logout(c.Request().Context(), claims.SessionID); err != nil {
		c.Logger().Error("Handler.Logout: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to log out"})
	}
	return c.NoContent(http.StatusNoContent)
}
