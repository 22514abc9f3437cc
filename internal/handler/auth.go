package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/wontwopunch/shiptour-v2/internal/config"
    "github.com/wontwopunch/shiptour-v2/internal/utils"
)

// AuthHandler authenticates the single administrator account.
type AuthHandler struct {
    Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
    return &AuthHandler{Cfg: cfg}
}

type loginRequest struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

// Login checks the credentials against the configured admin account
// and issues a short-lived access token.  Failed attempts return the
// same message regardless of which part was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginRequest
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid request body")
    }
    if req.Username == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "username and password are required")
    }
    if req.Username != h.Cfg.AdminUser || !utils.VerifyPassword(h.Cfg.AdminPassHash, req.Password) {
        return fail(c, http.StatusUnauthorized, "invalid credentials")
    }

    tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "could not issue token")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":      true,
        "access_token": tok.Token,
        "expires_at":   tok.Exp,
    })
}

// Check confirms that the presented token is valid.  It sits behind
// the JWT middleware, so reaching it at all means the token passed.
func (h *AuthHandler) Check(c echo.Context) error {
    admin, _ := c.Get("admin").(string)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "admin": admin})
}
