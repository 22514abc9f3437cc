package utils

import "golang.org/x/crypto/bcrypt"

// VerifyPassword reports whether plain matches the stored bcrypt hash
// of the admin credential.  Comparison is constant-time inside bcrypt;
// any malformed hash simply fails verification.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashPassword returns a bcrypt hash of plain.  Operators run this
// once to produce the ADMIN_PASS_HASH value.  Costs below the bcrypt
// minimum are raised to the default rather than silently producing a
// weak hash.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}
