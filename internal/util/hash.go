package util

import (
	"crypto/sha256"
	"encoding/base64"
)

// Sha256Base64URL returns unpadded base64url of sha256(plain). Reset codes are
// stored in this form.
func Sha256Base64URL(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
