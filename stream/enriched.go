package stream

import "context"

// EnrichedClient streams the default (enriched) article feed: sentiment,
// confidence, content, companies, categories, and countries in addition
// to the base fields. Deduplication is enabled, keyed by article link
// (spec.md §3, §4.9).
type EnrichedClient struct {
	eng *engine[EnrichedArticle]
}

// NewEnrichedClient constructs a client for the enriched stream.
func NewEnrichedClient(cfg Config) *EnrichedClient {
	return &EnrichedClient{
		eng: newEngine(cfg, "", "finlight-enriched", transformEnriched, enrichedIdentifier),
	}
}

func enrichedIdentifier(a EnrichedArticle) (string, bool) {
	if a.Link == "" {
		return "", false
	}
	return a.Link, true
}

// Subscribe starts the supervised connection using context.Background().
// params is the caller's subscription descriptor (filters, symbols, etc);
// it is merged with a fresh client nonce on every connection attempt.
func (c *EnrichedClient) Subscribe(params map[string]any, sink func(EnrichedArticle)) error {
	return c.SubscribeWithContext(context.Background(), params, sink)
}

// SubscribeWithContext is like Subscribe but the supplied context governs
// the whole supervised lifetime: cancelling it is equivalent to Stop().
func (c *EnrichedClient) SubscribeWithContext(ctx context.Context, params map[string]any, sink func(EnrichedArticle)) error {
	return c.eng.subscribe(ctx, params, sink)
}

// Stop terminates the subscription. Idempotent, safe from any context.
func (c *EnrichedClient) Stop() {
	c.eng.stop()
}

// LeaseID returns the lease identifier from the most recent `admit`
// frame, or ErrNotRunning if no session is currently open.
func (c *EnrichedClient) LeaseID() (string, error) {
	return c.eng.LeaseID()
}
