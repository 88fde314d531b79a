package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSignature is the shared-secret HMAC the gateway puts on production
// callbacks: SHA-256 over transactionId, amount and status concatenated in
// that order.
func ComputeSignature(secret, transactionID string, amount int64, status string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s%d%s", transactionID, amount, status)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(secret, transactionID string, amount int64, status, signature string) bool {
	expected := ComputeSignature(secret, transactionID, amount, status)
	return hmac.Equal([]byte(signature), []byte(expected))
}
