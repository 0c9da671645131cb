package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// MaxTimestampSkew bounds how far a signed timestamp may drift from the
// current time before a delivery counts as a replay.
const MaxTimestampSkew = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("signature header is required")
	ErrMissingTimestamp = errors.New("signature header is missing a timestamp")
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrInvalidTimestamp = errors.New("signature timestamp is not a valid unix timestamp")
	ErrTimestampExpired = errors.New("signature timestamp is too far from current time")
)

// VerifySignature authenticates one push delivery. The header is a
// comma-separated list of key=value pairs carrying a `t` timestamp and one or
// more `v1` signatures (several during secret rotation). A delivery is
// accepted when any v1 value hex-decodes to HMAC-SHA256(secret, t + "." + body)
// and the timestamp lies within MaxTimestampSkew of now.
func VerifySignature(signatureHeader string, payload []byte, secret string, now time.Time) error {
	header := strings.TrimSpace(signatureHeader)
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp string
	var signatures []string
	for _, pair := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" {
		return ErrMissingTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(strings.TrimSpace(sig))
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrInvalidSignature
	}

	// Freshness is checked only after the signature itself matched.
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew > MaxTimestampSkew || skew < -MaxTimestampSkew {
		return ErrTimestampExpired
	}
	return nil
}
