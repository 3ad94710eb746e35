// Package mock provides a scriptable stt.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/hireloop-ai/hireloop/pkg/provider/stt"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider is a test double for stt.Provider. All methods are safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// TranscribeFunc, when non-nil, is invoked for every Transcribe call.
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)

	// Text is the transcript returned when TranscribeFunc is nil.
	Text string

	// Err is returned when TranscribeFunc is nil and Err is non-nil.
	Err error

	calls int
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	p.mu.Lock()
	p.calls++
	fn := p.TranscribeFunc
	text, err := p.Text, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// Calls returns the number of Transcribe invocations recorded so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
