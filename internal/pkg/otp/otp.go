package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const Digits = 6

var upper = big.NewInt(1_000_000)

// Generate returns a zero-padded six digit code.
func Generate() (string, error) {
	return generate(rand.Reader)
}

func generate(r io.Reader) (string, error) {
	n, err := rand.Int(r, upper)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", Digits, n.Int64()), nil
}
