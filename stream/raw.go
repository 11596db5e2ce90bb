package stream

import "context"

// RawClient streams the undecorated article feed at the /raw endpoint
// suffix. Deduplication is disabled (spec.md §3, §4.9: "for the raw
// stream no identifier is derived").
type RawClient struct {
	eng *engine[RawArticle]
}

// NewRawClient constructs a client for the raw stream.
func NewRawClient(cfg Config) *RawClient {
	return &RawClient{
		eng: newEngine[RawArticle](cfg, "/raw", "finlight-raw", transformRaw, nil),
	}
}

// Subscribe starts the supervised connection using context.Background().
func (c *RawClient) Subscribe(params map[string]any, sink func(RawArticle)) error {
	return c.SubscribeWithContext(context.Background(), params, sink)
}

// SubscribeWithContext is like Subscribe but the supplied context governs
// the whole supervised lifetime: cancelling it is equivalent to Stop().
func (c *RawClient) SubscribeWithContext(ctx context.Context, params map[string]any, sink func(RawArticle)) error {
	return c.eng.subscribe(ctx, params, sink)
}

// Stop terminates the subscription. Idempotent, safe from any context.
func (c *RawClient) Stop() {
	c.eng.stop()
}

// LeaseID returns the lease identifier from the most recent `admit`
// frame, or ErrNotRunning if no session is currently open.
func (c *RawClient) LeaseID() (string, error) {
	return c.eng.LeaseID()
}
