package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/wontwopunch/shiptour-v2/internal/config"
    "github.com/wontwopunch/shiptour-v2/internal/utils"
)

func testAuthHandler(t *testing.T) *AuthHandler {
    t.Helper()
    hash, err := utils.HashPassword("open-sesame", bcrypt.MinCost)
    require.NoError(t, err)
    return NewAuthHandler(config.Config{
        JWTSecret:     "test-secret",
        AccessTTLMin:  15,
        AdminUser:     "admin",
        AdminPassHash: hash,
    })
}

func postLogin(h *AuthHandler, body string) *httptest.ResponseRecorder {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    _ = h.Login(e.NewContext(req, rec))
    return rec
}

func TestLoginSuccess(t *testing.T) {
    h := testAuthHandler(t)
    rec := postLogin(h, `{"username":"admin","password":"open-sesame"}`)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "access_token")
}

func TestLoginWrongPassword(t *testing.T) {
    h := testAuthHandler(t)
    rec := postLogin(h, `{"username":"admin","password":"guess"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWrongUser(t *testing.T) {
    h := testAuthHandler(t)
    rec := postLogin(h, `{"username":"root","password":"open-sesame"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
    h := testAuthHandler(t)
    rec := postLogin(h, `{"username":"admin"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
