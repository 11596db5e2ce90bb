package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// clientVersion is sent as x-client-version on every dial.
const clientVersion = "finlight-go/1.0"

// engine is the supervisor loop shared by the enriched and raw stream
// variants. It is parameterised by a small capability record instead of
// the inheritance hierarchy the teacher uses for its two clients
// (spec.md §9 design note): transform decodes a wire payload into T,
// identifierOf (when non-nil) extracts the deduplication key.
type engine[T any] struct {
	config   Config
	endpoint string
	logPrefix string

	transform    func(map[string]any) T
	identifierOf func(T) (string, bool)

	dial func(ctx context.Context, opts dialOptions) (transport, error)

	mu       sync.Mutex
	stopped  bool
	running  bool
	cancel   context.CancelFunc
	tr       transport
	cur      *sessionState

	backoff *backoffPolicy
	dup     *duplicateFilter
}

func newEngine[T any](cfg Config, endpointSuffix, logPrefix string, transform func(map[string]any) T, identifierOf func(T) (string, bool)) *engine[T] {
	return &engine[T]{
		config:       cfg,
		endpoint:     strings.TrimRight(cfg.WSSURL, "/") + endpointSuffix,
		logPrefix:    logPrefix,
		transform:    transform,
		identifierOf: identifierOf,
		dial:         dialTransport,
		backoff:      newBackoffPolicy(cfg.BaseReconnectDelay, cfg.MaxReconnectDelay),
		dup:          newDuplicateFilter(),
	}
}

func (e *engine[T]) logf(level string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.logPrefix != "" {
		msg = e.logPrefix + ": " + msg
	}
	switch level {
	case "debug":
		e.config.Logger.Debugf("%s", msg)
	case "info":
		e.config.Logger.Infof("%s", msg)
	case "warn":
		e.config.Logger.Warnf("%s", msg)
	default:
		e.config.Logger.Errorf("%s", msg)
	}
}

// subscribe starts the supervisor loop. Returns ErrAlreadySubscribed if
// already running (spec.md §4.1 "Should only be called once").
func (e *engine[T]) subscribe(ctx context.Context, params map[string]any, sink func(T)) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadySubscribed
	}
	if e.config.APIKey == "" {
		e.mu.Unlock()
		return ErrMissingAPIKey
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.stopped = false
	e.mu.Unlock()

	go e.run(runCtx, params, sink)
	return nil
}

// stop is idempotent and safe to call from any context (spec.md §4.1,
// §5). It signals the loop, which drains timers and closes the live
// transport.
func (e *engine[T]) stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	cancel := e.cancel
	tr := e.tr
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if tr != nil {
		_ = tr.close(closeNormal, "client stop")
	}
}

func (e *engine[T]) setTransport(tr transport) {
	e.mu.Lock()
	e.tr = tr
	e.mu.Unlock()
}

// LeaseID returns the lease identifier recorded from the most recent
// `admit` frame (spec.md §3 "Connection session", §4.3). Returns
// ErrNotRunning if no session is currently open, or an empty string if
// the session is open but no `admit` has arrived yet.
func (e *engine[T]) LeaseID() (string, error) {
	e.mu.Lock()
	sess := e.cur
	e.mu.Unlock()
	if sess == nil {
		return "", ErrNotRunning
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.leaseID, nil
}

func (e *engine[T]) run(ctx context.Context, params map[string]any, sink func(T)) {
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		permanentStop, closeErr := e.connectAndRun(ctx, params, sink)
		if permanentStop {
			return
		}
		if closeErr != nil {
			e.logf("warn", "connection ended: %v", closeErr)
			if strings.Contains(closeErr.Error(), "429") {
				e.backoff.setReconnectAt(time.Now().Add(openTime429Wait))
			}
		}

		wait := e.backoff.next(time.Now())
		e.logf("info", "reconnecting in %s", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// sessionState tracks the mutable per-connection attributes from
// spec.md §3 ("Connection session").
type sessionState struct {
	mu       sync.Mutex
	nonce    string
	leaseID  string
	lastPong time.Time
	start    time.Time
}

// connectAndRun opens one transport session, runs the handshake and
// message pump, and returns once the session ends. permanentStop
// indicates the supervisor loop must exit without reconnecting.
func (e *engine[T]) connectAndRun(ctx context.Context, params map[string]any, sink func(T)) (permanentStop bool, retErr error) {
	tr, err := e.dial(ctx, dialOptions{
		url:       e.endpoint,
		apiKey:    e.config.APIKey,
		takeover:  e.config.Takeover,
		userAgent: clientVersion,
	})
	if err != nil {
		return false, fmt.Errorf("open transport: %w", err)
	}
	e.setTransport(tr)
	defer e.setTransport(nil)

	// Reset backoff, clear reconnectAt, record session start (spec.md §4.1 step 2).
	e.backoff.reset()

	sess := &sessionState{
		nonce: newClientNonce(),
		start: time.Now(),
	}
	sess.lastPong = sess.start

	e.mu.Lock()
	e.cur = sess
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cur = nil
		e.mu.Unlock()
	}()

	sessCtx, sessCancel := context.WithCancel(ctx)
	defer sessCancel()

	var wg sync.WaitGroup
	closeOnce := sync.Once{}
	closeCode := 0
	closeReason := ""
	requestClose := func(code int, reason string) {
		closeOnce.Do(func() {
			closeCode, closeReason = code, reason
			if code == 0 {
				_ = tr.closeAbnormal()
			} else {
				_ = tr.close(code, reason)
			}
			sessCancel()
		})
	}

	var sendMu sync.Mutex
	send := func(data []byte) error {
		sendMu.Lock()
		defer sendMu.Unlock()
		return tr.send(ctx, data)
	}

	// Handshake: first outbound frame is the subscription descriptor
	// plus the client nonce (spec.md §4.1 step 2, §4.2).
	subFrame, err := encodeSubscription(params, sess.nonce)
	if err != nil {
		requestClose(closeNormal, "")
		if e.config.OnClose != nil {
			e.config.OnClose(closeCode, closeReason)
		}
		return false, fmt.Errorf("encode subscription: %w", err)
	}
	if err := send(subFrame); err != nil {
		requestClose(closeNormal, "")
		if e.config.OnClose != nil {
			e.config.OnClose(closeCode, closeReason)
		}
		return false, fmt.Errorf("send subscription: %w", err)
	}

	wg.Add(3)
	go func() { defer wg.Done(); e.heartbeatLoop(sessCtx, send) }()
	go func() { defer wg.Done(); e.pongWatchdog(sessCtx, sess, requestClose) }()
	go func() { defer wg.Done(); e.rotationTimer(sessCtx, requestClose) }()

	sessionPermanent, pumpErr := e.messagePump(sessCtx, tr, sess, sink, requestClose, send)

	sessCancel()
	wg.Wait()

	if e.config.OnClose != nil {
		e.config.OnClose(closeCode, closeReason)
	}

	if sessionPermanent || closeCode == closePolicyViolation {
		e.mu.Lock()
		e.stopped = true
		e.mu.Unlock()
		return true, pumpErr
	}

	return false, pumpErr
}

// heartbeatLoop sends a ping every PingInterval while the transport is
// open (spec.md §4.4). A tick is skipped only implicitly: once the
// transport errors, send returns an error and the loop exits, letting
// the message pump's recv error drive reconnection.
func (e *engine[T]) heartbeatLoop(ctx context.Context, send func([]byte) error) {
	ticker := time.NewTicker(e.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := encodePing(time.Now())
			if err != nil {
				continue
			}
			if err := send(frame); err != nil {
				return
			}
		}
	}
}

// pongWatchdog fires every 5s; if the gap since the last inbound pong
// exceeds PongTimeout, it closes the transport with no code, letting the
// reactive-reconnect path run (spec.md §4.4).
func (e *engine[T]) pongWatchdog(ctx context.Context, sess *sessionState, requestClose func(int, string)) {
	ticker := time.NewTicker(watchdogTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.mu.Lock()
			gap := time.Since(sess.lastPong)
			sess.mu.Unlock()
			if gap > e.config.PongTimeout {
				e.logf("warn", "pong timeout after %s", gap)
				requestClose(0, "pong timeout")
				return
			}
		}
	}
}

// rotationTimer fires once at ConnectionLifetime and proactively closes
// the session before an infrastructure-imposed ceiling (spec.md §4.5).
func (e *engine[T]) rotationTimer(ctx context.Context, requestClose func(int, string)) {
	timer := time.NewTimer(e.config.ConnectionLifetime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		e.logf("info", "proactive rotation")
		requestClose(closeRotation, "Proactive rotation")
	}
}

// messagePump reads inbound frames until the session ends and dispatches
// them through the router (spec.md §4.3).
func (e *engine[T]) messagePump(ctx context.Context, tr transport, sess *sessionState, sink func(T), requestClose func(int, string), send func([]byte) error) (permanentStop bool, retErr error) {
	type result struct {
		data []byte
		err  error
	}
	frames := make(chan result, 1)

	go func() {
		for {
			data, err := tr.recv(ctx)
			frames <- result{data, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return permanentStop, nil
		case r := <-frames:
			if r.err != nil {
				if code, ok := closeCodeOf(r.err); ok {
					requestClose(code, "peer closed")
					if code == closePolicyViolation {
						return true, fmt.Errorf("closed: policy violation")
					}
					return false, fmt.Errorf("transport closed: code %d", code)
				}
				return false, r.err
			}

			frame, err := decodeInbound(r.data)
			if err != nil {
				e.logf("warn", "malformed inbound frame: %v", err)
				continue
			}

			stop := e.route(frame, sess, sink, requestClose, send)
			if stop {
				return true, nil
			}
		}
	}
}

// route dispatches a single decoded inbound frame per spec.md §4.3's
// action table. Returns true when the permanent-stop condition
// ("preempted") has fired.
func (e *engine[T]) route(frame inboundFrame, sess *sessionState, sink func(T), requestClose func(int, string), send func([]byte) error) bool {
	switch frame.Action {
	case actionPong:
		sess.mu.Lock()
		sess.lastPong = time.Now()
		sess.mu.Unlock()
		if frame.T != nil {
			rtt := time.Since(time.UnixMilli(int64(*frame.T)))
			e.logf("debug", "pong rtt=%s", rtt)
		}

	case actionAdmit:
		sess.mu.Lock()
		sess.leaseID = frame.LeaseID
		nonce := sess.nonce
		sess.mu.Unlock()
		if frame.ClientNonce != "" && frame.ClientNonce != nonce {
			e.logf("warn", "admit echoed unexpected clientNonce")
		}

	case actionPreempted:
		requestClose(closeNormal, "Preempted by server")
		return true

	case actionSendArticle:
		data := frame.articleData()
		if data == nil {
			e.logf("warn", "sendArticle frame missing data")
			return false
		}
		article := e.transform(data)
		if e.identifierOf != nil {
			if id, ok := e.identifierOf(article); ok {
				if e.dup.seenOrInsert(id) {
					return false
				}
			}
		}
		sink(article)

	case actionAdminKick:
		retryAfter := defaultKickWait
		if frame.RetryAfter != nil {
			retryAfter = time.Duration(*frame.RetryAfter) * time.Millisecond
		}
		e.backoff.setReconnectAt(time.Now().Add(retryAfter))
		requestClose(closeAdminKick, "admin kick")

	case actionError:
		msg := strings.ToLower(frame.errorMessage())
		switch {
		case strings.Contains(msg, "limit"):
			e.backoff.setReconnectAt(time.Now().Add(rateLimitWait))
			requestClose(closeClientRateLimit, "rate limited")
		case strings.Contains(msg, "blocked"):
			e.backoff.setReconnectAt(time.Now().Add(blockedUserWait))
			requestClose(closeClientBlocked, "blocked user")
		default:
			e.logf("warn", "server error: %s", frame.errorMessage())
		}

	default:
		e.logf("debug", "ignoring unknown action %q", frame.Action)
	}

	return false
}
