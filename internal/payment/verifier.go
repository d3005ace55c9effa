package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature is a hard security gate: no order may be created on
// a failed verification.
var ErrInvalidSignature = errors.New("payment signature verification failed")

// ComputeSignature returns the hex HMAC-SHA256 of
// "gatewayOrderID|gatewayPaymentID" under the shared secret. This is the
// signature scheme the gateway uses on its payment callbacks.
func ComputeSignature(gatewayOrderID, gatewayPaymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the callback signature and compares it in
// constant time, so a mismatch leaks nothing about which byte differed.
func VerifySignature(gatewayOrderID, gatewayPaymentID, signature, secret string) error {
	expected := ComputeSignature(gatewayOrderID, gatewayPaymentID, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
