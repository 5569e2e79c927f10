package pkg

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a securely generated random string of length n,
// suitable for session tokens. It returns an error if the system's secure
// random number generator fails to function correctly, in which case the
// caller should not continue.
func GenerateRandomString(n int) (string, error) {
	return randomFromCharset(n, tokenCharset)
}

// GenerateNumericCode returns a securely generated string of n random digits,
// used for signup confirmation and password reset codes.
func GenerateNumericCode(n int) (string, error) {
	return randomFromCharset(n, "0123456789")
}

func randomFromCharset(n int, charset string) (string, error) {
	if n <= 0 {
		return "", errors.New("length must be greater than 0")
	}

	b := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = charset[idx.Int64()]
	}

	return string(b), nil
}
