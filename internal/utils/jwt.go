// Package utils provides helper functions for token creation and
// password verification.
package utils

import (
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its
// expiry.  The Token field contains the JWT string.  Access tokens are
// short-lived and carried in the Authorization header on every
// protected call.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for the administrator.
// It takes the signing secret, the login name, and a TTL in minutes.
// The JWT includes subject (sub), expiration (exp) and issued-at (iat)
// claims.
func NewAccessToken(secret, subject string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub": subject,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
