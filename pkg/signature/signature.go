package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header carries the provider's hex-encoded HMAC of the raw request body.
const Header = "X-Webhook-Signature"

// Compute returns the hex-encoded HMAC-SHA256 of body under secret.
func Compute(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a claimed signature against the raw, unparsed body.
// The signature must cover the exact bytes received on the wire:
// re-serialized JSON is not canonical and would produce false negatives.
func Verify(body []byte, claimed, secret string) bool {
	if claimed == "" {
		return false
	}
	return hmac.Equal([]byte(Compute(body, secret)), []byte(claimed))
}
