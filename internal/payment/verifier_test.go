package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "test-secret"
	orderID := "order_abc123"
	paymentID := "pay_def456"

	sig := ComputeSignature(orderID, paymentID, secret)

	t.Run("valid signature passes", func(t *testing.T) {
		assert.NoError(t, VerifySignature(orderID, paymentID, sig, secret))
	})

	t.Run("flipping any character fails", func(t *testing.T) {
		for i := 0; i < len(sig); i++ {
			tampered := []byte(sig)
			if tampered[i] == 'a' {
				tampered[i] = 'b'
			} else {
				tampered[i] = 'a'
			}
			err := VerifySignature(orderID, paymentID, string(tampered), secret)
			require.ErrorIs(t, err, ErrInvalidSignature, "position %d", i)
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		err := VerifySignature(orderID, paymentID, sig, "other-secret")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("swapped identifiers fail", func(t *testing.T) {
		err := VerifySignature(paymentID, orderID, sig, secret)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("empty signature fails", func(t *testing.T) {
		err := VerifySignature(orderID, paymentID, "", secret)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestComputeSignatureIsDeterministic(t *testing.T) {
	a := ComputeSignature("o1", "p1", "s")
	b := ComputeSignature("o1", "p1", "s")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}
