package services

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// documentNumber builds a human-readable document number like
// DEVIS-20250101-F4K2Q7. Collisions are statistically negligible; the unique
// index on the number column is the final guard.
func documentNumber(prefix string, now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the system is broken beyond number
		// generation; fall back to a timestamp suffix.
		return fmt.Sprintf("%s-%s-%d", prefix, now.Format("20060102"), now.UnixNano()%1000000)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), buf)
}
