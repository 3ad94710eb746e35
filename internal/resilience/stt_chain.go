package resilience

import (
	"context"

	"github.com/hireloop-ai/hireloop/pkg/provider/stt"
)

// STTChain implements [stt.Provider] with breaker-guarded failover across
// multiple transcription backends.
type STTChain struct {
	chain *Chain[stt.Provider]
}

var _ stt.Provider = (*STTChain)(nil)

// NewSTTChain creates an [STTChain] with primary as the preferred backend.
func NewSTTChain(primaryName string, primary stt.Provider, breaker BreakerConfig) *STTChain {
	return &STTChain{chain: NewChain(primaryName, primary, breaker)}
}

// Append registers an additional transcription backend as a fallback.
func (c *STTChain) Append(name string, p stt.Provider) {
	c.chain.Append(name, p)
}

// Names returns the backend names in trial order.
func (c *STTChain) Names() []string { return c.chain.Names() }

// Transcribe sends the audio to the first healthy backend. An empty
// transcript is a success (silence), not a failover trigger.
func (c *STTChain) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return Run(c.chain, func(p stt.Provider) (string, error) {
		return p.Transcribe(ctx, audio)
	})
}
