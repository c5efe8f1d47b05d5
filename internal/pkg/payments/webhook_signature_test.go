package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"paymentId":"123","paymentStatus":"success"}`)
	secret := "topsecret"

	assert.True(t, VerifyWebhookSignature(payload, sign(payload, secret), secret))

	// Whitespace around the header value must not matter.
	assert.True(t, VerifyWebhookSignature(payload, "  "+sign(payload, secret)+"\n", secret))
}

func TestVerifyWebhookSignatureRejects(t *testing.T) {
	payload := []byte(`{"paymentId":"123"}`)
	secret := "topsecret"

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    string
	}{
		{"wrong secret", payload, sign(payload, "other"), secret},
		{"tampered payload", []byte(`{"paymentId":"999"}`), sign(payload, secret), secret},
		{"not base64", payload, "%%%not-base64%%%", secret},
		{"empty signature", payload, "", secret},
		{"empty secret", payload, sign(payload, secret), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyWebhookSignature(tt.payload, tt.signature, tt.secret))
		})
	}
}
