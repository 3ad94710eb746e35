// Package tts defines the Provider interface for Text-to-Speech backends.
//
// The interview pipeline synthesises one complete interviewer utterance at a
// time and ships the result to the browser as a single base64 payload, so the
// interface is batch: text in, encoded audio bytes out. Synthesis failure is
// never fatal — the orchestrator delivers the text event regardless and
// simply omits the audio event.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any batch TTS backend.
type Provider interface {
	// Synthesize converts text into encoded audio (MP3 or PCM depending on
	// the backend). Returns an error if synthesis fails or ctx is cancelled;
	// callers treat any error as "no audio for this utterance" rather than a
	// session failure.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
