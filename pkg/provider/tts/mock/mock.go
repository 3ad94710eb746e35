// Package mock provides a scriptable tts.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
)

// Compile-time assertion that Provider implements tts.Provider.
var _ tts.Provider = (*Provider)(nil)

// Provider is a test double for tts.Provider. All methods are safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// SynthesizeFunc, when non-nil, is invoked for every Synthesize call.
	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)

	// Audio is the byte payload returned when SynthesizeFunc is nil.
	// Defaults to a short fake payload when nil.
	Audio []byte

	// Err is returned when SynthesizeFunc is nil and Err is non-nil.
	Err error

	// Texts records every synthesised text, in order.
	Texts []string
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	p.Texts = append(p.Texts, text)
	fn := p.SynthesizeFunc
	audio, err := p.Audio, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	if err != nil {
		return nil, err
	}
	if audio == nil {
		audio = []byte("fake-audio")
	}
	return audio, nil
}

// Calls returns the number of Synthesize invocations recorded so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Texts)
}
