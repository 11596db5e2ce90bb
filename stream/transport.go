package stream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

// Close codes the engine observes or emits, per spec.md §6.
const (
	closeNormal           = 1000 // permitted: e.g. after preempted
	closePolicyViolation  = 1008 // permanent: blocked user
	closeRateLimited      = 1013 // transient: server-initiated rate limit
	closeRotation         = 4000 // client-initiated: proactive rotation
	closeClientRateLimit  = 4001 // client-initiated: error mentions "limit"
	closeClientBlocked    = 4002 // client-initiated: error mentions "blocked"
	closeAdminKick        = 4003 // client-initiated: admin_kick
)

// transport abstracts a duplex text-message socket with open/message/
// close/error signals (spec.md §2's "Transport adapter" row), so the
// engine can be driven by a fake in tests.
type transport interface {
	// send writes a single text frame. Sends are serialized by the
	// caller (spec.md §5).
	send(ctx context.Context, data []byte) error
	// recv blocks for the next inbound text frame, or returns an error
	// (including the peer's close) when the connection ends.
	recv(ctx context.Context) ([]byte, error)
	// close closes the connection with the given close code and reason.
	// Safe to call more than once.
	close(code int, reason string) error
	// closeAbnormal closes the connection with no close frame, mirroring
	// the pong-watchdog's "closes with no code" behavior (spec.md §4.4).
	closeAbnormal() error
}

// dialOptions carries what the engine needs to open a transport.
type dialOptions struct {
	url       string
	apiKey    string
	takeover  bool
	userAgent string
}

// wsTransport adapts *websocket.Conn to the transport interface.
type wsTransport struct {
	conn *websocket.Conn
}

func dialTransport(ctx context.Context, opts dialOptions) (transport, error) {
	header := http.Header{}
	header.Set("x-api-key", opts.apiKey)
	header.Set("x-client-version", opts.userAgent)
	if opts.takeover {
		header.Set("x-takeover", "true")
	}

	conn, _, err := websocket.Dial(ctx, opts.url, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.url, err)
	}
	conn.SetReadLimit(8 * 1024 * 1024)
	return &wsTransport{conn: conn}, nil
}

func (w *wsTransport) send(ctx context.Context, data []byte) error {
	return w.conn.Write(ctx, websocket.MessageText, data)
}

func (w *wsTransport) recv(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (w *wsTransport) close(code int, reason string) error {
	return w.conn.Close(websocket.StatusCode(code), reason)
}

func (w *wsTransport) closeAbnormal() error {
	return w.conn.CloseNow()
}

// closeCodeOf extracts a WebSocket close code from an error returned by
// recv, if any was sent by the peer.
func closeCodeOf(err error) (int, bool) {
	code := websocket.CloseStatus(err)
	if code == -1 {
		return 0, false
	}
	return int(code), true
}
