package auth

import (
	"errors"
	"net/http"

	"cafe-frontdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const contextKey = "staff"

// Middleware verifies the staff token and that its session has not been
// logged out or expired server-side.
func (s *Service) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    s.secret,
		SigningMethod: jwt.SigningMethodHS256.Name,
		ContextKey:    contextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Please log in again"})
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, err := ClaimsFrom(c)
			if err != nil || !s.Active(c.Request().Context(), claims.SessionID) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Session expired. Please log in again"})
			}
			return next(c)
		})
	}
}

// ClaimsFrom returns the verified staff claims on c.
func ClaimsFrom(c echo.Context) (*Claims, error) {
	tok, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.SessionID == "" {
		return nil, errors.Join(models.ErrUnauthorized, errors.New("malformed staff claims"))
	}
	return claims, nil
}
