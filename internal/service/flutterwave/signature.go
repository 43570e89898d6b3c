package flutterwave

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
)

const (
	SignatureHeader  = "flutterwave-signature"
	LegacyHashHeader = "verif-hash"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns base64(HMAC-SHA256(body, secret)).
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the HMAC header, falling back to the legacy
// verif-hash header that carries the secret hash itself.
func VerifySignature(h http.Header, body []byte, secret string) error {
	if secret == "" {
		return ErrInvalidSignature
	}

	if sig := h.Get(SignatureHeader); sig != "" {
		if hmac.Equal([]byte(sig), []byte(Sign(body, secret))) {
			return nil
		}
		return ErrInvalidSignature
	}

	if hash := h.Get(LegacyHashHeader); hash != "" {
		if subtle.ConstantTimeCompare([]byte(hash), []byte(secret)) == 1 {
			return nil
		}
	}

	return ErrInvalidSignature
}
