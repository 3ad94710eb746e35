package resilience

import (
	"context"

	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
)

// LLMChain implements [llm.Provider] with breaker-guarded failover across
// multiple LLM backends.
type LLMChain struct {
	chain *Chain[llm.Provider]
}

var _ llm.Provider = (*LLMChain)(nil)

// NewLLMChain creates an [LLMChain] with primary as the preferred backend.
func NewLLMChain(primaryName string, primary llm.Provider, breaker BreakerConfig) *LLMChain {
	return &LLMChain{chain: NewChain(primaryName, primary, breaker)}
}

// Append registers an additional LLM backend as a fallback.
func (c *LLMChain) Append(name string, p llm.Provider) {
	c.chain.Append(name, p)
}

// Names returns the backend names in trial order.
func (c *LLMChain) Names() []string { return c.chain.Names() }

// Complete sends the request to the first healthy backend.
func (c *LLMChain) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return Run(c.chain, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}
