package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the plain text password using bcrypt.
// Cost 10 matches the salt rounds the mobile clients were tuned against.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), 10)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsHashed reports whether the value already looks like a bcrypt hash,
// so a stored hash is never re-hashed on save.
func IsHashed(v string) bool {
	_, err := bcrypt.Cost([]byte(v))
	return err == nil
}
