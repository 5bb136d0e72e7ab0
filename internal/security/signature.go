package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks gateway signatures. Direct verification signs
// "{order_id}|{payment_id}"; webhooks sign the exact raw request body. Both
// use HMAC-SHA256 keyed by the shared secret, hex-encoded, and compare in
// constant time.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyPayment checks the signature over the sanitized order and payment
// ids. Empty inputs never verify.
func (v *Verifier) VerifyPayment(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	message := SanitizeID(orderID) + "|" + SanitizeID(paymentID)
	expected := v.sign([]byte(message))
	return hmac.Equal([]byte(expected), []byte(SanitizeID(signature)))
}

// VerifyWebhook checks the signature over the raw webhook body.
func (v *Verifier) VerifyWebhook(payload []byte, signature string) bool {
	if len(payload) == 0 || signature == "" {
		return false
	}
	expected := v.sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayment produces the signature the gateway would send for a captured
// payment. Used by the mock gateway; the live gateway signs on its side.
func (v *Verifier) SignPayment(orderID, paymentID string) string {
	return v.sign([]byte(SanitizeID(orderID) + "|" + SanitizeID(paymentID)))
}

func (v *Verifier) sign(message []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// SanitizeID strips everything but alphanumerics, underscore, dash and pipe
// from an external identifier before it is embedded in a signed message.
func SanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '-', r == '|':
			return r
		}
		return -1
	}, s)
}
