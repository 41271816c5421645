package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var fiveDigits = big.NewInt(100000)

// NewOrderID returns "ORD-<epoch millis>-<5 random digits>".
func NewOrderID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, fiveDigits)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%05d", now.UnixMilli(), n.Int64()), nil
}
