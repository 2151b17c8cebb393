package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// GenerateOTP returns a 6-digit numeric code drawn from a cryptographically
// secure source. Guessability is a security property here, so math/rand is
// not acceptable.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateSessionID returns an opaque, unguessable 64-character hex token.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateReferenceNumber returns a unique reference for a completed payment,
// e.g. PAY-20260830-4F2A91C3E7.
func GenerateReferenceNumber() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reference number: %w", err)
	}
	return fmt.Sprintf("PAY-%s-%X", time.Now().UTC().Format("20060102"), b), nil
}
