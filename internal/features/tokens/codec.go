package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// Codec mints and verifies stateless, self-authenticating download tokens.
// A stateless token is base64url(json payload) + "." + hex(HMAC-SHA256).
// Anyone holding the secret can verify it without a database round trip;
// forging one requires the secret. There is no use-count enforcement on
// this path, it exists only as the degraded-mode fallback.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

type statelessPayload struct {
	Filename string `json:"f"`
	Expiry   int64  `json:"e"`
}

// Mint builds a signed token binding filename to an absolute expiry.
func (c *Codec) Mint(filename string, expiresAt time.Time) string {
	payload, _ := json.Marshal(statelessPayload{
		Filename: filename,
		Expiry:   expiresAt.Unix(),
	})

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded)
}

// Verify checks the signature and expiry of a minted token. Any structural
// problem fails closed as ErrTokenInvalid; a valid signature past its
// expiry returns ErrTokenExpired, which callers must keep distinct.
func (c *Codec) Verify(token string) (string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", time.Time{}, ErrTokenInvalid
	}

	expectedSignature, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", time.Time{}, ErrTokenInvalid
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0]))

	// Constant-time comparison, a direct byte compare would leak timing.
	if !hmac.Equal(mac.Sum(nil), expectedSignature) {
		return "", time.Time{}, ErrTokenInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", time.Time{}, ErrTokenInvalid
	}

	var payload statelessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	if payload.Filename == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	expiresAt := time.Unix(payload.Expiry, 0).UTC()
	if expiresAt.Before(time.Now().UTC()) {
		return payload.Filename, expiresAt, ErrTokenExpired
	}

	return payload.Filename, expiresAt, nil
}

func (c *Codec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedPayload))
	return hex.EncodeToString(mac.Sum(nil))
}
