package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret, timestamp string) string {
	signed := body
	if timestamp != "" {
		signed = []byte(timestamp + "." + string(body))
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(signed)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignatureNoTimestamp(t *testing.T) {
	body := []byte(`{"event":"article.created"}`)
	secret := "shh"
	sig := sign(body, secret, "")

	require.NoError(t, Verify(body, sig, secret, ""))
}

func TestVerify_ValidSignatureWithShaPrefix(t *testing.T) {
	body := []byte(`{"event":"article.created"}`)
	secret := "shh"
	sig := "sha256=" + sign(body, secret, "")

	require.NoError(t, Verify(body, sig, secret, ""))
}

func TestVerify_ValidSignatureWithTimestamp(t *testing.T) {
	body := []byte(`{"event":"article.created"}`)
	secret := "shh"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := sign(body, secret, ts)

	require.NoError(t, Verify(body, sig, secret, ts))
}

func TestVerify_SignatureMismatch(t *testing.T) {
	body := []byte(`{"event":"article.created"}`)
	sig := sign(body, "right-secret", "")

	assert.ErrorIs(t, Verify(body, sig, "wrong-secret", ""), ErrSignatureMismatch)
}

func TestVerify_TamperedBody(t *testing.T) {
	secret := "shh"
	sig := sign([]byte(`{"event":"a"}`), secret, "")

	assert.ErrorIs(t, Verify([]byte(`{"event":"b"}`), sig, secret, ""), ErrSignatureMismatch)
}

func TestVerify_MalformedSignatureHex(t *testing.T) {
	body := []byte(`{"event":"a"}`)
	assert.ErrorIs(t, Verify(body, "not-hex-!!", "secret", ""), ErrMalformedSignature)
}

func TestVerify_TimestampOutsideSkewRejected(t *testing.T) {
	body := []byte(`{"event":"a"}`)
	secret := "shh"
	old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
	sig := sign(body, secret, old)

	assert.ErrorIs(t, Verify(body, sig, secret, old), ErrClockSkew)
}

func TestVerify_TimestampWithinSkewAccepted(t *testing.T) {
	body := []byte(`{"event":"a"}`)
	secret := "shh"
	recent := strconv.FormatInt(time.Now().Add(-2*time.Minute).Unix(), 10)
	sig := sign(body, secret, recent)

	require.NoError(t, Verify(body, sig, secret, recent))
}

func TestVerify_MalformedTimestamp(t *testing.T) {
	body := []byte(`{"event":"a"}`)
	assert.Error(t, Verify(body, "deadbeef", "secret", "not-a-number"))
}
