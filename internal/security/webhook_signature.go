package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// signaturePrefix はX-Notion-Signatureヘッダー値の接頭辞。
const signaturePrefix = "sha256="

var (
	// ErrMissingSignature は署名ヘッダーが空の場合のエラー。
	ErrMissingSignature = errors.New("webhook signature is missing")
	// ErrInvalidSignature は署名が一致しない場合のエラー。
	ErrInvalidSignature = errors.New("webhook signature mismatch")
)

// WebhookVerifier はNotion Webhookのリクエスト署名を検証する。
// 署名は検証トークンを鍵としたリクエストボディのHMAC-SHA256。
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier はWebhookVerifierを生成する。
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Enabled はシークレットが設定されているかを返す。
func (v *WebhookVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Sign はボディに対する署名ヘッダー値（sha256=<hex>）を返す。
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify は署名ヘッダー値がボディの署名と一致するかを定数時間で比較する。
func (v *WebhookVerifier) Verify(body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(signature), []byte(v.Sign(body))) {
		return ErrInvalidSignature
	}
	return nil
}
