package razorpayx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader is the header RazorpayX signs webhook deliveries with.
const SignatureHeader = "X-Razorpay-Signature"

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature over the raw
// request body. Comparison is constant time.
func VerifyWebhookSignature(secret string, body []byte, provided string) bool {
	if secret == "" || strings.TrimSpace(provided) == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(provided)))
}

// SignWebhookPayload produces the signature RazorpayX would send for the
// payload. Used by tests and local tooling.
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
