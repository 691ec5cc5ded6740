package middleware

import (
	"net/http"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/response"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/utils"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// IsLoggedIn verifies the HS256 bearer token and stores it under "user".
func IsLoggedIn(secret string) echo.MiddlewareFunc {
	return echomiddleware.JWTWithConfig(echomiddleware.JWTConfig{
		SigningKey: []byte(secret),
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			log.Ctx(c.Request().Context()).Info().Err(err).Str("component", "IsLoggedIn").Msg("")
			return c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Status:  response.StatusFailed,
				Message: "Invalid or expired JWT",
			})
		},
	})
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, role, ok := utils.ExtractTokenUser(c)
			if !ok {
				return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
			}

			if !allowed[domain.NormalizeRole(role)] {
				return response.WriteErrorResponse(c, errs.ErrForbidden, nil)
			}

			return next(c)
		}
	}
}
