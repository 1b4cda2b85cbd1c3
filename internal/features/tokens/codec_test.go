package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Mint_ThenVerify_ReturnsFilenameAndExpiry(t *testing.T) {
	codec := NewCodec("test-secret")
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	token := codec.Mint("biodata_classic_0_20250101_abcd1234.pdf", expiresAt)

	filename, gotExpiry, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "biodata_classic_0_20250101_abcd1234.pdf", filename)
	assert.Equal(t, expiresAt.Unix(), gotExpiry.Unix())
}

func Test_Mint_TokenHasTwoDotSeparatedParts(t *testing.T) {
	codec := NewCodec("test-secret")

	token := codec.Mint("biodata_a.pdf", time.Now().Add(time.Hour))

	assert.Len(t, strings.Split(token, "."), 2)
}

func Test_Verify_TamperedPayload_ReturnsInvalid(t *testing.T) {
	codec := NewCodec("test-secret")
	token := codec.Mint("biodata_a.pdf", time.Now().Add(time.Hour))

	parts := strings.Split(token, ".")
	tampered := parts[0] + "x." + parts[1]

	_, _, err := codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func Test_Verify_TokenSignedWithDifferentSecret_ReturnsInvalid(t *testing.T) {
	token := NewCodec("secret-one").Mint("biodata_a.pdf", time.Now().Add(time.Hour))

	_, _, err := NewCodec("secret-two").Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func Test_Verify_ExpiredToken_ReturnsExpiredWithFilename(t *testing.T) {
	codec := NewCodec("test-secret")
	token := codec.Mint("biodata_a.pdf", time.Now().UTC().Add(-time.Minute))

	filename, _, err := codec.Verify(token)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "biodata_a.pdf", filename, "expired tokens should still report which file they were for")
}

func Test_Verify_ExpiryErrorIsDistinctFromInvalid(t *testing.T) {
	codec := NewCodec("test-secret")
	token := codec.Mint("biodata_a.pdf", time.Now().UTC().Add(-time.Minute))

	_, _, err := codec.Verify(token)

	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func Test_Verify_MissingSeparator_ReturnsInvalid(t *testing.T) {
	codec := NewCodec("test-secret")

	_, _, err := codec.Verify("no-separator-here")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func Test_Verify_NonHexSignature_ReturnsInvalid(t *testing.T) {
	codec := NewCodec("test-secret")

	_, _, err := codec.Verify("eyJmIjoiYSJ9.not-hex!!")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func Test_Verify_EmptyFilenameInPayload_ReturnsInvalid(t *testing.T) {
	codec := NewCodec("test-secret")
	token := codec.Mint("", time.Now().Add(time.Hour))

	_, _, err := codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
