package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"
)

func signPayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"created":1700000000,"type":"checkout.session.completed","data":{"object":{"id":"cs_1","subscription":"sub_1"}}}`)
	secret := "whsec_test"
	ts := int64(1700000000)
	now := time.Unix(ts, 0)
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload(secret, ts, payload))

	if err := VerifySignature(header, payload, secret, now); err != nil {
		t.Fatalf("expected signature to validate, got %v", err)
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"created":1700000000,"type":"checkout.session.completed"}`)
	secret := "whsec_test"
	ts := int64(1700000000)
	now := time.Unix(ts, 0)
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload(secret, ts, payload))

	tampered := append([]byte(nil), payload...)
	tampered[0] ^= 0x01
	if err := VerifySignature(header, tampered, secret, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered payload, got %v", err)
	}

	if err := VerifySignature(header, payload, "whsec_other", now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for wrong secret, got %v", err)
	}
}

func TestVerifySignature_SecretRotation(t *testing.T) {
	payload := []byte(`{"type":"invoice.created"}`)
	secret := "whsec_current"
	ts := time.Now().Unix()
	now := time.Unix(ts, 0)

	// An old-secret signature plus the current one; any matching v1 accepts.
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s",
		ts,
		signPayload("whsec_retired", ts, payload),
		signPayload(secret, ts, payload),
	)
	if err := VerifySignature(header, payload, secret, now); err != nil {
		t.Fatalf("expected rotated signature to validate, got %v", err)
	}
}

func TestVerifySignature_HeaderErrors(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	ts := int64(1700000000)
	now := time.Unix(ts, 0)

	if err := VerifySignature("", payload, secret, now); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}

	header := fmt.Sprintf("v1=%s", signPayload(secret, ts, payload))
	if err := VerifySignature(header, payload, secret, now); !errors.Is(err, ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}

	if err := VerifySignature("t=1700000000,v1=not-hex", payload, secret, now); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for undecodable v1, got %v", err)
	}
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"type":"invoice.created"}`)
	secret := "whsec_test"
	ts := int64(1700000000)
	header := fmt.Sprintf("t=%d,v1=%s", ts, signPayload(secret, ts, payload))

	// A correctly computed signature does not save a delivery outside the
	// freshness window, in either direction.
	if err := VerifySignature(header, payload, secret, time.Unix(ts+301, 0)); !errors.Is(err, ErrTimestampExpired) {
		t.Fatalf("expected ErrTimestampExpired for old delivery, got %v", err)
	}
	if err := VerifySignature(header, payload, secret, time.Unix(ts-301, 0)); !errors.Is(err, ErrTimestampExpired) {
		t.Fatalf("expected ErrTimestampExpired for future delivery, got %v", err)
	}
	if err := VerifySignature(header, payload, secret, time.Unix(ts+299, 0)); err != nil {
		t.Fatalf("expected delivery inside the window to validate, got %v", err)
	}
}

func TestVerifySignature_UnparsableTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	header := fmt.Sprintf("t=soon,v1=%s", func() string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte("soon."))
		mac.Write(payload)
		return hex.EncodeToString(mac.Sum(nil))
	}())

	if err := VerifySignature(header, payload, secret, time.Now()); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}
