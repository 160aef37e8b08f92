package paymentgateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifyWebhookSignature checks the X-Razorpay-Signature header: hex HMAC-SHA256 of the raw body.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return ErrInvalidSignature
	}
	given, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(given, sign(body, secret)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignWebhookBody produces the signature Razorpay would send for body.
func SignWebhookBody(body []byte, secret string) string {
	return hex.EncodeToString(sign(body, secret))
}

func sign(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
