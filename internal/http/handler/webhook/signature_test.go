package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/internal/http/handler/webhook"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

var _ = Describe("VerifySignature", func() {
	body := []byte(`{"ref":"refs/heads/main"}`)
	secret := "hush"

	It("accepts a correctly signed body", func() {
		Expect(webhook.VerifySignature(body, sign(body, secret), secret)).To(BeTrue())
	})

	It("rejects a signature computed with a different secret", func() {
		Expect(webhook.VerifySignature(body, sign(body, "other"), secret)).To(BeFalse())
	})

	It("rejects a signature over a different body", func() {
		Expect(webhook.VerifySignature([]byte("tampered"), sign(body, secret), secret)).To(BeFalse())
	})

	It("rejects an empty header", func() {
		Expect(webhook.VerifySignature(body, "", secret)).To(BeFalse())
	})

	It("rejects a header without the sha256 prefix", func() {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		Expect(webhook.VerifySignature(body, hex.EncodeToString(mac.Sum(nil)), secret)).To(BeFalse())
	})

	It("rejects a header with a sha1 prefix", func() {
		Expect(webhook.VerifySignature(body, "sha1=deadbeef", secret)).To(BeFalse())
	})

	It("rejects non-hex digest bytes", func() {
		Expect(webhook.VerifySignature(body, "sha256=not-hex-at-all", secret)).To(BeFalse())
	})

	It("rejects a bare prefix with no digest", func() {
		Expect(webhook.VerifySignature(body, "sha256=", secret)).To(BeFalse())
	})

	It("verifies an empty body", func() {
		Expect(webhook.VerifySignature(nil, sign(nil, secret), secret)).To(BeTrue())
	})
})
