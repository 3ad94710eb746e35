package resilience

import (
	"context"

	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
)

// TTSChain implements [tts.Provider] with breaker-guarded failover across
// multiple synthesis backends.
//
// Note that fallbacks may produce different audio formats than the primary
// (e.g. a gtranslate fallback behind an elevenlabs primary); clients are
// expected to sniff the container rather than assume one codec.
type TTSChain struct {
	chain *Chain[tts.Provider]
}

var _ tts.Provider = (*TTSChain)(nil)

// NewTTSChain creates a [TTSChain] with primary as the preferred backend.
func NewTTSChain(primaryName string, primary tts.Provider, breaker BreakerConfig) *TTSChain {
	return &TTSChain{chain: NewChain(primaryName, primary, breaker)}
}

// Append registers an additional synthesis backend as a fallback.
func (c *TTSChain) Append(name string, p tts.Provider) {
	c.chain.Append(name, p)
}

// Names returns the backend names in trial order.
func (c *TTSChain) Names() []string { return c.chain.Names() }

// Synthesize renders text on the first healthy backend.
func (c *TTSChain) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return Run(c.chain, func(p tts.Provider) ([]byte, error) {
		return p.Synthesize(ctx, text)
	})
}
