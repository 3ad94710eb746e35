// Package protocol defines the JSON message envelope exchanged with the
// browser over the interview WebSocket.
//
// Every frame carries a "type" discriminator. Inbound frames drive the
// session state machine; outbound frames are events the client renders.
// Unrecognised inbound types are a forward-compatible no-op, not an error.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Type is the message discriminator shared by inbound and outbound frames.
type Type string

// Inbound message types.
const (
	// TypeConfig carries the interview role and level. Accepted once.
	TypeConfig Type = "config"

	// TypeAudioInput carries one base64-encoded candidate utterance.
	TypeAudioInput Type = "audio_input"

	// TypeEndCall ends the interview and requests the final review.
	TypeEndCall Type = "end_call"
)

// Outbound message types.
const (
	// TypeText is an interviewer utterance as text.
	TypeText Type = "text"

	// TypeAudio is base64-encoded synthesized speech for the preceding text.
	TypeAudio Type = "audio"

	// TypeTranscriptUpdate echoes the candidate's recognised text (or the
	// unintelligible sentinel).
	TypeTranscriptUpdate Type = "transcript_update"

	// TypeStopLoading tells the client it may clear its busy indicator.
	TypeStopLoading Type = "stop_loading"

	// TypeStopAudio tells the client to halt any playing audio immediately.
	TypeStopAudio Type = "stop_audio"

	// TypeStartReview tells the client the review computation has begun.
	TypeStartReview Type = "start_review"

	// TypeFeedback carries the final evaluation (score plus full text).
	TypeFeedback Type = "feedback"

	// TypeError reports an unrecoverable per-session error.
	TypeError Type = "error"
)

// Inbound is a message received from the client.
type Inbound struct {
	Type    Type   `json:"type"`
	Role    string `json:"role,omitempty"`
	Level   string `json:"level,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// Outbound is a message sent to the client. Payload is either a plain string
// or a [Feedback] value depending on Type.
type Outbound struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// Feedback is the payload of a TypeFeedback message.
type Feedback struct {
	Score int    `json:"score"`
	Text  string `json:"text"`
}

// ParseInbound decodes one inbound frame. It returns an error only for
// malformed JSON or a missing type; unknown type values parse successfully
// so the caller can ignore them.
func ParseInbound(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, fmt.Errorf("protocol: decode inbound: %w", err)
	}
	if msg.Type == "" {
		return Inbound{}, fmt.Errorf("protocol: inbound message has no type")
	}
	return msg, nil
}

// Text builds an interviewer-utterance event.
func Text(payload string) Outbound {
	return Outbound{Type: TypeText, Payload: payload}
}

// Audio builds a synthesized-speech event. payload must already be base64.
func Audio(payload string) Outbound {
	return Outbound{Type: TypeAudio, Payload: payload}
}

// TranscriptUpdate builds a candidate-transcript event.
func TranscriptUpdate(payload string) Outbound {
	return Outbound{Type: TypeTranscriptUpdate, Payload: payload}
}

// StopLoading builds the busy-indicator clear advisory.
func StopLoading() Outbound {
	return Outbound{Type: TypeStopLoading}
}

// StopAudio builds the halt-playback advisory.
func StopAudio() Outbound {
	return Outbound{Type: TypeStopAudio}
}

// StartReview builds the review-started advisory.
func StartReview() Outbound {
	return Outbound{Type: TypeStartReview}
}

// FeedbackMsg builds the final-evaluation event.
func FeedbackMsg(score int, text string) Outbound {
	return Outbound{Type: TypeFeedback, Payload: Feedback{Score: score, Text: text}}
}

// Error builds an unrecoverable-error event.
func Error(payload string) Outbound {
	return Outbound{Type: TypeError, Payload: payload}
}
