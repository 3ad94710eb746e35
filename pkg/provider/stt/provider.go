// Package stt defines the Provider interface for Speech-to-Text backends.
//
// Interviews are strictly turn-based: the client records one complete answer
// and ships it as a single audio blob, so the interface is batch rather than
// streaming. A provider receives the raw encoded audio bytes exactly as the
// browser produced them and returns the recognised text, or an empty string
// when the audio contains no intelligible speech.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe converts one utterance of encoded audio into text.
	//
	// An empty string with a nil error means the audio was silent or
	// unintelligible; callers must not treat that as a failure. A non-nil
	// error indicates the backend could not be reached or rejected the
	// request — callers degrade it to an empty transcript.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
