// Package mock provides a scriptable llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
)

// Compile-time assertion that Provider implements llm.Provider.
var _ llm.Provider = (*Provider)(nil)

// Provider is a test double for llm.Provider. Configure behaviour via the
// public fields before use; all methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// CompleteFunc, when non-nil, is invoked for every Complete call.
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)

	// Responses is a queue of canned response texts consumed in order when
	// CompleteFunc is nil. When the queue is exhausted the last entry repeats.
	Responses []string

	// Err, when non-nil and CompleteFunc is nil, is returned by every call.
	Err error

	// Requests records every request received, in order.
	Requests []llm.CompletionRequest

	next int
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	fn := p.CompleteFunc
	err := p.Err
	var content string
	if fn == nil && err == nil {
		if len(p.Responses) == 0 {
			content = "mock response"
		} else {
			i := p.next
			if i >= len(p.Responses) {
				i = len(p.Responses) - 1
			}
			content = p.Responses[i]
			p.next++
		}
	}
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return &llm.CompletionResponse{Content: content}, nil
}

// Calls returns the number of Complete invocations recorded so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}
