package stream

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Inbound action discriminators, per spec.md §4.3.
const (
	actionPong        = "pong"
	actionAdmit       = "admit"
	actionPreempted   = "preempted"
	actionSendArticle = "sendArticle"
	actionAdminKick   = "admin_kick"
	actionError       = "error"
)

// inboundFrame is the generic shape every inbound message is decoded
// into first; action dispatches further field extraction. Data is kept
// raw because its shape depends on the action: an object for
// sendArticle, a bare string for error.
type inboundFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`

	// pong
	T *float64 `json:"t"`

	// admit
	LeaseID     string `json:"leaseId"`
	ServerNow   int64  `json:"serverNow"`
	ClientNonce string `json:"clientNonce"`

	// admin_kick
	RetryAfter *int64 `json:"retryAfter"`

	// error (string may also arrive under "error" rather than "data")
	Error string `json:"error"`
}

// decodeInbound parses a raw text frame. Malformed JSON is the caller's
// responsibility to log and drop (spec.md §4.3): it is never fatal to
// the session.
func decodeInbound(raw []byte) (inboundFrame, error) {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return inboundFrame{}, fmt.Errorf("decode inbound frame: %w", err)
	}
	return f, nil
}

// articleData decodes Data as an article payload object, for sendArticle
// frames.
func (f inboundFrame) articleData() map[string]any {
	var m map[string]any
	if len(f.Data) == 0 {
		return nil
	}
	_ = json.Unmarshal(f.Data, &m)
	return m
}

// errorMessage returns the error text regardless of whether the server
// used a bare "data" string or the "error" field.
func (f inboundFrame) errorMessage() string {
	if len(f.Data) > 0 {
		var s string
		if err := json.Unmarshal(f.Data, &s); err == nil && s != "" {
			return s
		}
	}
	return f.Error
}

// encodeSubscription builds the first outbound frame: the caller's
// subscription parameters merged with a freshly generated client nonce.
func encodeSubscription(params map[string]any, nonce string) ([]byte, error) {
	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["clientNonce"] = nonce
	return json.Marshal(merged)
}

// encodePing builds a heartbeat frame carrying the current unix-ms time.
func encodePing(now time.Time) ([]byte, error) {
	return json.Marshal(map[string]any{
		"action": "ping",
		"t":      now.UnixMilli(),
	})
}

// newClientNonce generates a fresh UUIDv4 client nonce, per spec.md §4.2.
func newClientNonce() string {
	return uuid.NewString()
}
