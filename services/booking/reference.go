package booking

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"math/big"
)

// generateConfirmationReference produces a public lookup code of the form
// "GS-XXXX-XXXX". Safe to show anywhere; it grants no access by itself.
func generateConfirmationReference() (string, error) {
	const length = 8
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(code) > length {
		code = code[:length]
	}
	return fmt.Sprintf("GS-%s-%s", code[:4], code[4:]), nil
}

// generateConfirmationPIN produces the 6-digit secret used to manage a
// booking without an account. It must never appear in a URL, log line or
// query string.
func generateConfirmationPIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
