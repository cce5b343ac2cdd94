package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arunprasath/shopcart/internal/utils"
)

const testSecret = "test-secret"

func serve(mw echo.MiddlewareFunc, mutate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/myprofile", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	_ = handler(c)
	return rec, c
}

func TestJWTAuth_BearerHeader(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "64f000000000000000000001", "user", 60)
	require.NoError(t, err)

	rec, c := serve(JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "64f000000000000000000001", c.Get("user_id"))
	assert.Equal(t, "user", c.Get("role"))
}

func TestJWTAuth_SessionCookie(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "64f000000000000000000002", "admin", 60)
	require.NoError(t, err)

	rec, c := serve(JWTAuth(testSecret), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: tok.Token})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", c.Get("role"))
}

func TestJWTAuth_MissingToken(t *testing.T) {
	rec, _ := serve(JWTAuth(testSecret), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login first")
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", "64f000000000000000000003", "user", 60)
	require.NoError(t, err)

	rec, _ := serve(JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "64f000000000000000000004", "user", -1)
	require.NoError(t, err)

	rec, _ := serve(JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	run := func(role any) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		handler := RequireRole("admin")(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		_ = handler(c)
		return rec
	}

	assert.Equal(t, http.StatusOK, run("admin").Code)
	assert.Equal(t, http.StatusForbidden, run("user").Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
}
