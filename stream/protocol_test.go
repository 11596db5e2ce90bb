package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound_SendArticle(t *testing.T) {
	raw := []byte(`{"action":"sendArticle","data":{"link":"l","title":"t"}}`)
	f, err := decodeInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, actionSendArticle, f.Action)

	data := f.articleData()
	assert.Equal(t, "l", data["link"])
	assert.Equal(t, "t", data["title"])
}

func TestDecodeInbound_ErrorAsBareString(t *testing.T) {
	raw := []byte(`{"action":"error","data":"rate limit exceeded"}`)
	f, err := decodeInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, "rate limit exceeded", f.errorMessage())
}

func TestDecodeInbound_ErrorViaErrorField(t *testing.T) {
	raw := []byte(`{"action":"error","error":"blocked user"}`)
	f, err := decodeInbound(raw)
	require.NoError(t, err)
	assert.Equal(t, "blocked user", f.errorMessage())
}

func TestDecodeInbound_MalformedJSON(t *testing.T) {
	_, err := decodeInbound([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeSubscription_MergesNonce(t *testing.T) {
	params := map[string]any{"sources": []string{"reuters"}}
	raw, err := encodeSubscription(params, "nonce-123")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"clientNonce":"nonce-123"`)
	assert.Contains(t, string(raw), `"sources"`)
}

func TestEncodePing_CarriesUnixMillis(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := encodePing(now)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"t":1704067200000`)
}

func TestNewClientNonce_IsUnique(t *testing.T) {
	a := newClientNonce()
	b := newClientNonce()
	assert.NotEqual(t, a, b, "expected distinct nonces")
	assert.NotEmpty(t, a)
}
