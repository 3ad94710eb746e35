// Package session implements the interview turn orchestrator: the per-
// connection state machine that drives a voice interview from configuration
// through candidate/interviewer turns to the final review.
//
// One [Orchestrator] exists per websocket connection. The transport layer
// feeds it inbound frames one at a time; slow provider work (transcription,
// generation, synthesis) runs in tracked background tasks so the message loop
// stays responsive and the speech guard can reject overlapping input.
package session

import (
	"encoding/json"
	"fmt"
)

// Speaker identifies which party produced a transcript turn.
type Speaker string

const (
	// SpeakerInterviewer marks an utterance generated by the LLM interviewer.
	SpeakerInterviewer Speaker = "interviewer"

	// SpeakerCandidate marks a transcribed candidate utterance.
	SpeakerCandidate Speaker = "candidate"
)

// Turn is one entry in the transcript ledger.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// State is the lifecycle phase of a session.
//
// Transitions: configuring → awaiting_input ⇄ processing_turn → reviewing →
// closed. The reviewing and closed states are terminal with respect to new
// candidate input.
type State string

const (
	// StateConfiguring is the initial state; only a config message advances
	// the session.
	StateConfiguring State = "configuring"

	// StateAwaitingInput accepts candidate audio.
	StateAwaitingInput State = "awaiting_input"

	// StateProcessingTurn is active while a transcription/generation/
	// synthesis task is outstanding.
	StateProcessingTurn State = "processing_turn"

	// StateReviewing is entered on end_call; the final evaluation is being
	// produced.
	StateReviewing State = "reviewing"

	// StateClosed is terminal.
	StateClosed State = "closed"
)

// ledger is the append-only transcript. It is not safe for concurrent use on
// its own; the orchestrator serialises access under its mutex.
type ledger struct {
	turns []Turn
}

// append adds one turn. Turns are never modified or removed afterwards.
func (l *ledger) append(speaker Speaker, text string) {
	l.turns = append(l.turns, Turn{Speaker: speaker, Text: text})
}

// snapshot returns a copy of the turns so callers can read without holding
// the orchestrator lock.
func (l *ledger) snapshot() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// MarshalTranscript serialises turns for persistence and for the review
// prompt. Indented for human inspection of stored records.
func MarshalTranscript(turns []Turn) ([]byte, error) {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("session: marshal transcript: %w", err)
	}
	return data, nil
}
