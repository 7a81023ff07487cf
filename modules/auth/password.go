package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor for account password hashes.
const DefaultBcryptCost = 12

// MaxPasswordBytes is bcrypt's input limit. Signup rejects longer passwords
// instead of letting the hash fail.
const MaxPasswordBytes = 72

// PasswordHasher turns signup passwords into the hash stored on user.User
// and checks login attempts against it.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher uses DefaultBcryptCost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultBcryptCost}
}

// NewPasswordHasherWithCost lets tests use bcrypt.MinCost.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash returns the value stored in user.User.PasswordHash.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether a login password matches the stored hash. Any
// mismatch or malformed hash is just false, so Login can answer
// ErrInvalidCredentials without saying why.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
