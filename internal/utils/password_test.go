package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("harbor-master", bcrypt.MinCost)
    require.NoError(t, err)

    assert.True(t, VerifyPassword(hash, "harbor-master"))
    assert.False(t, VerifyPassword(hash, "harbour-master"))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
    assert.False(t, VerifyPassword("not-a-bcrypt-hash", "anything"))
}

func TestHashPasswordRaisesLowCost(t *testing.T) {
    hash, err := HashPassword("harbor-master", 0)
    require.NoError(t, err)

    cost, err := bcrypt.Cost([]byte(hash))
    require.NoError(t, err)
    assert.Equal(t, bcrypt.DefaultCost, cost)
    assert.True(t, VerifyPassword(hash, "harbor-master"))
}
