package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

const submitterContextKey = "submitter"

// SubmitterIdentity authenticates the bearer token and extracts the
// submitter identity used to stamp report submissions
func SubmitterIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			submitter := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if name, ok := claims["name"].(string); ok && name != "" {
					submitter = name
				} else if sub, err := claims.GetSubject(); err == nil {
					submitter = sub
				}
			}
			if submitter == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token carries no identity")
			}

			c.Set(submitterContextKey, submitter)
			ctx := context.WithValue(c.Request().Context(), logger.SubmitterKey, submitter)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// Submitter returns the authenticated submitter identity for a request
func Submitter(c echo.Context) string {
	submitter, _ := c.Get(submitterContextKey).(string)
	return submitter
}
