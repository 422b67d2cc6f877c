package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenNumericCode generates a secure random numeric code of the given number
// of digits, zero-padded. Used for email OTPs (4 digits) and temporary
// passwords (6 digits).
func GenNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid digit count %d", digits)
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
