package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runMiddleware(t *testing.T, authorization string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var submitter string
	handler := SubmitterIdentity(testSecret)(func(c echo.Context) error {
		submitter = Submitter(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, submitter
}

func TestSubmitterIdentityValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"name": "compliance officer"}, testSecret)

	rec, submitter := runMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "compliance officer", submitter)
}

func TestSubmitterIdentityFallsBackToSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "officer-17"}, testSecret)

	rec, submitter := runMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "officer-17", submitter)
}

func TestSubmitterIdentityMissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitterIdentityWrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"name": "officer"}, "other-secret")

	rec, _ := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitterIdentityAnonymousToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{}, testSecret)

	rec, _ := runMiddleware(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
