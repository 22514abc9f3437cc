package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("secret", "admin", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

    parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
        return []byte("secret"), nil
    })
    require.NoError(t, err)
    require.True(t, parsed.Valid)

    sub, err := parsed.Claims.GetSubject()
    require.NoError(t, err)
    assert.Equal(t, "admin", sub)
}

func TestNewAccessTokenWrongSecretFails(t *testing.T) {
    tok, err := NewAccessToken("secret", "admin", 15)
    require.NoError(t, err)

    _, err = jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
        return []byte("other"), nil
    })
    assert.Error(t, err)
}
