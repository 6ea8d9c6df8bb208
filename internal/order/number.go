package order

import (
	"crypto/rand"
	"encoding/base32"
	"time"
)

var numberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewNumber returns a customer-facing order number, PS-YYYYMMDD-XXXXXX.
func NewNumber(now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "PS-" + now.UTC().Format("20060102") + "-" + numberEncoding.EncodeToString(b)[:6], nil
}
