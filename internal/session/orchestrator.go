package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hireloop-ai/hireloop/internal/observe"
	"github.com/hireloop-ai/hireloop/internal/protocol"
	"github.com/hireloop-ai/hireloop/internal/store"
	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
	"github.com/hireloop-ai/hireloop/pkg/provider/stt"
	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
)

// ErrSessionClosed is returned by [Orchestrator.HandleFrame] once the session
// has reached its terminal state. The transport read loop should stop on it.
var ErrSessionClosed = errors.New("session: closed")

// UnintelligibleSentinel is surfaced to the client when transcription yields
// nothing. It is never appended to the prompting ledger.
const UnintelligibleSentinel = "(Unintelligible)"

// guardAdvisory is sent when candidate audio arrives while interviewer output
// is still being produced.
const guardAdvisory = "Please wait until I finish speaking."

// Fallback utterances substituted when the LLM call fails or times out. The
// interview continues; the candidate sees a plausible interviewer line rather
// than an error.
const (
	greetingFallback = "Hello, and thank you for joining today. To get us started, please introduce yourself and walk me through your background."
	replyFallback    = "I see. Let us keep going. Please tell me about a recent project you worked on and your role in it."
	reviewFallback   = "A detailed evaluation could not be generated for this interview. The transcript has been recorded for later assessment."
)

// Transport is the outbound half of the session's connection. Send must
// preserve message order for a single session.
type Transport interface {
	Send(ctx context.Context, msg protocol.Outbound) error
	Close() error
}

// Providers bundles the three pipeline stages an interview needs.
type Providers struct {
	LLM llm.Provider
	STT stt.Provider
	TTS tts.Provider
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithStore sets the record store used to persist the finished interview.
// Without a store the session runs normally but nothing is persisted.
func WithStore(s store.RecordStore) Option {
	return func(o *Orchestrator) { o.recs = s }
}

// WithMetrics sets the metrics instruments. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProviderTimeout bounds each individual STT, LLM, and TTS call.
// Default: 30s.
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Orchestrator drives one interview session. It owns all mutable session
// state: the transcript ledger, the stop flag, the lifecycle state, and the
// set of outstanding background tasks.
//
// HandleFrame is intended to be called from a single goroutine (the
// connection's read loop); the internal mutex exists because background tasks
// touch the ledger and flags concurrently with that loop.
type Orchestrator struct {
	id        string
	transport Transport
	llm       llm.Provider
	stt       stt.Provider
	tts       tts.Provider
	recs      store.RecordStore
	metrics   *observe.Metrics
	log       *slog.Logger
	timeout   time.Duration

	mu      sync.Mutex
	state   State
	role    string
	level   string
	stopped bool
	ledger  ledger

	tasks *taskSet
	wg    sync.WaitGroup
}

// New creates an [Orchestrator] for one accepted connection. id should be
// unique per connection (the server derives it from the accept timestamp).
func New(id string, transport Transport, providers Providers, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:        id,
		transport: transport,
		llm:       providers.LLM,
		stt:       providers.STT,
		tts:       providers.TTS,
		log:       slog.Default(),
		timeout:   30 * time.Second,
		state:     StateConfiguring,
		role:      "General",
		level:     "Junior",
		tasks:     newTaskSet(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	o.metrics.ActiveSessions.Add(context.Background(), 1)
	return o
}

// State returns the session's current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a copy of the ledger.
func (o *Orchestrator) Transcript() []Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.snapshot()
}

// HandleFrame processes one inbound frame to completion or hands it to a
// background task, then returns so the read loop can fetch the next frame.
// Returns [ErrSessionClosed] once the session is finished. A panicking
// handler is recovered here, reported as an error event, and closes the
// session.
func (o *Orchestrator) HandleFrame(ctx context.Context, raw []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("session handler panicked",
				"session", o.id, "panic", r)
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = o.transport.Send(sctx, protocol.Error(fmt.Sprintf("internal error: %v", r)))
			o.shutdown()
			err = ErrSessionClosed
		}
	}()

	if o.State() == StateClosed {
		return ErrSessionClosed
	}

	msg, perr := protocol.ParseInbound(raw)
	if perr != nil {
		// Malformed frames are dropped, not fatal.
		o.log.Warn("dropping malformed frame", "session", o.id, "error", perr)
		return nil
	}

	switch msg.Type {
	case protocol.TypeConfig:
		return o.handleConfig(ctx, msg)
	case protocol.TypeAudioInput:
		return o.handleAudioInput(ctx, msg)
	case protocol.TypeEndCall:
		return o.handleEndCall(ctx)
	default:
		// Unknown types are a forward-compatible no-op.
		o.log.Debug("ignoring unknown message type",
			"session", o.id, "type", string(msg.Type))
		return nil
	}
}

// Close ends the session silently: no review, no persistence. Used by the
// transport layer when the connection drops.
func (o *Orchestrator) Close() {
	o.shutdown()
}

// ---- inbound handlers ----

// handleConfig accepts the first config message, stores role/level, and
// kicks off greeting generation as a background task. Later config messages
// are ignored; role and level are immutable once set.
func (o *Orchestrator) handleConfig(ctx context.Context, msg protocol.Inbound) error {
	o.mu.Lock()
	if o.state != StateConfiguring {
		o.mu.Unlock()
		o.log.Debug("ignoring config after configuration", "session", o.id)
		return nil
	}
	if msg.Role != "" {
		o.role = msg.Role
	}
	if msg.Level != "" {
		o.level = msg.Level
	}
	o.stopped = false
	o.state = StateAwaitingInput
	role, level := o.role, o.level
	o.mu.Unlock()

	o.log.Info("session configured",
		"session", o.id, "role", role, "level", level)

	o.spawn(ctx, func(tctx context.Context) {
		text := o.generate(tctx, BuildGreetingPrompt(role, level), greetingFallback)
		o.deliverInterviewerTurn(tctx, text)
	})
	return nil
}

// handleAudioInput applies the speech guard, decodes the payload, and hands
// the STT→LLM→TTS pipeline to a background task.
func (o *Orchestrator) handleAudioInput(ctx context.Context, msg protocol.Inbound) error {
	o.mu.Lock()
	switch {
	case o.state == StateConfiguring:
		o.mu.Unlock()
		o.log.Debug("audio before configuration, dropping", "session", o.id)
		o.send(ctx, protocol.StopLoading())
		return nil
	case o.state == StateReviewing || o.state == StateClosed:
		o.mu.Unlock()
		return nil
	case o.stopped || o.tasks.active():
		// Speech guard: interviewer output is still being produced.
		o.mu.Unlock()
		o.send(ctx, protocol.Text(guardAdvisory))
		o.send(ctx, protocol.StopLoading())
		return nil
	}
	o.state = StateProcessingTurn
	role, level := o.role, o.level
	o.mu.Unlock()

	audio, err := base64.StdEncoding.DecodeString(msg.Payload)
	if err != nil || len(audio) == 0 {
		o.setState(StateAwaitingInput)
		if err != nil {
			o.log.Warn("dropping undecodable audio payload",
				"session", o.id, "error", err)
		}
		o.send(ctx, protocol.StopLoading())
		return nil
	}

	o.spawn(ctx, func(tctx context.Context) {
		defer o.setState(StateAwaitingInput)
		o.processTurn(tctx, role, level, audio)
	})
	return nil
}

// handleEndCall runs the review finalizer: stop flag, task cancellation,
// stop_audio + start_review advisories, evaluation, feedback, best-effort
// persistence, close. A second end_call is a no-op.
func (o *Orchestrator) handleEndCall(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateReviewing || o.state == StateClosed {
		o.mu.Unlock()
		return ErrSessionClosed
	}
	o.stopped = true
	o.state = StateReviewing
	role, level := o.role, o.level
	o.mu.Unlock()

	o.tasks.cancelAll()
	o.send(ctx, protocol.StopAudio())
	o.send(ctx, protocol.StartReview())

	// Let cancelled tasks unwind before snapshotting so the transcript the
	// evaluator sees is final.
	o.wg.Wait()

	turns := o.Transcript()
	transcriptJSON, err := MarshalTranscript(turns)
	if err != nil {
		o.log.Error("marshal transcript failed", "session", o.id, "error", err)
		transcriptJSON = []byte("[]")
	}

	review := o.generate(ctx, BuildReviewPrompt(transcriptJSON), reviewFallback)
	score := ExtractScore(review)
	o.send(ctx, protocol.FeedbackMsg(score, review))
	o.metrics.Reviews.Add(ctx, 1)
	o.log.Info("interview reviewed",
		"session", o.id, "score", score, "turns", len(turns))

	if o.recs != nil {
		// Persistence is best-effort; the candidate already has their
		// feedback. Detached from ctx so a closing connection cannot abort
		// the write.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		rec := store.SessionRecord{
			SessionID:  o.id,
			Role:       role,
			Level:      level,
			Transcript: transcriptJSON,
			Feedback:   review,
			Score:      score,
			CreatedAt:  time.Now(),
		}
		if err := o.recs.Save(sctx, rec); err != nil {
			o.log.Error("persist session record failed",
				"session", o.id, "error", err)
		}
	}

	o.shutdown()
	return ErrSessionClosed
}

// ---- turn pipeline ----

// processTurn runs one candidate turn: transcribe, append, echo, generate the
// interviewer's reply, deliver it. Runs inside a tracked background task.
func (o *Orchestrator) processTurn(ctx context.Context, role, level string, audio []byte) {
	text := o.transcribe(ctx, audio)
	if o.isStopped() {
		return
	}
	if text == "" {
		o.send(ctx, protocol.TranscriptUpdate(UnintelligibleSentinel))
		o.send(ctx, protocol.StopLoading())
		return
	}

	o.mu.Lock()
	o.ledger.append(SpeakerCandidate, text)
	turns := o.ledger.snapshot()
	o.mu.Unlock()
	o.send(ctx, protocol.TranscriptUpdate(text))

	reply := o.generate(ctx, BuildTurnPrompt(role, level, turns, text), replyFallback)
	o.deliverInterviewerTurn(ctx, reply)
	o.metrics.Turns.Add(ctx, 1)
}

// deliverInterviewerTurn appends text as an interviewer turn and emits it as
// a text event followed, stop flag permitting, by synthesized audio. Text
// delivery is never blocked by synthesis failure.
func (o *Orchestrator) deliverInterviewerTurn(ctx context.Context, text string) {
	o.mu.Lock()
	if o.stopped || o.state == StateClosed {
		o.mu.Unlock()
		return
	}
	o.ledger.append(SpeakerInterviewer, text)
	o.mu.Unlock()

	o.send(ctx, protocol.Text(text))

	if o.isStopped() {
		return
	}
	audio := o.synthesize(ctx, text)
	// Re-check: end_call may have landed while synthesis ran.
	if len(audio) == 0 || o.isStopped() {
		return
	}
	o.send(ctx, protocol.Audio(base64.StdEncoding.EncodeToString(audio)))
}

// ---- provider wrappers (bounded, degrading, metered) ----

// generate runs one LLM completion bounded by the provider timeout. On any
// failure it returns fallback so the interview continues.
func (o *Orchestrator) generate(ctx context.Context, prompt, fallback string) string {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.llm.Complete(cctx, llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	o.recordProviderCall(ctx, "llm", o.metrics.LLMDuration, start, err)
	if err != nil {
		o.log.Warn("llm completion failed, using fallback",
			"session", o.id, "error", err)
		return fallback
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return fallback
	}
	return text
}

// transcribe runs STT bounded by the provider timeout. Errors degrade to an
// empty transcript, which the caller treats as unintelligible input.
func (o *Orchestrator) transcribe(ctx context.Context, audio []byte) string {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	text, err := o.stt.Transcribe(cctx, audio)
	o.recordProviderCall(ctx, "stt", o.metrics.STTDuration, start, err)
	if err != nil {
		o.log.Warn("transcription failed, treating as unintelligible",
			"session", o.id, "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// synthesize runs TTS bounded by the provider timeout. Errors degrade to
// absent audio.
func (o *Orchestrator) synthesize(ctx context.Context, text string) []byte {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	audio, err := o.tts.Synthesize(cctx, text)
	o.recordProviderCall(ctx, "tts", o.metrics.TTSDuration, start, err)
	if err != nil {
		o.log.Warn("synthesis failed, skipping audio",
			"session", o.id, "error", err)
		return nil
	}
	return audio
}

// recordProviderCall updates the request counter, error counter, and latency
// histogram for one provider invocation.
func (o *Orchestrator) recordProviderCall(ctx context.Context, kind string, hist metric.Float64Histogram, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		o.metrics.ProviderErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", kind)))
	}
	o.metrics.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	hist.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("kind", kind)))
}

// ---- small helpers ----

// spawn registers a tracked background task and runs fn under its child
// context. The task is registered before the goroutine starts so the speech
// guard observes it immediately.
func (o *Orchestrator) spawn(parent context.Context, fn func(context.Context)) {
	tctx, release := o.tasks.track(parent)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer release()
		fn(tctx)
	}()
}

// send writes one outbound event, logging (not failing) on transport errors.
// Cancelled task contexts are expected during end_call and stay quiet.
func (o *Orchestrator) send(ctx context.Context, msg protocol.Outbound) {
	if err := o.transport.Send(ctx, msg); err != nil {
		if ctx.Err() == nil {
			o.log.Warn("transport send failed",
				"session", o.id, "type", string(msg.Type), "error", err)
		}
	}
}

func (o *Orchestrator) isStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

// setState moves the lifecycle state unless the session has already reached
// reviewing or closed.
func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateReviewing || o.state == StateClosed {
		return
	}
	o.state = s
}

// shutdown moves the session to its terminal state, cancels outstanding
// work, and closes the transport. Idempotent.
func (o *Orchestrator) shutdown() {
	o.mu.Lock()
	already := o.state == StateClosed
	o.state = StateClosed
	o.stopped = true
	o.mu.Unlock()
	if already {
		return
	}
	o.tasks.cancelAll()
	o.metrics.ActiveSessions.Add(context.Background(), -1)
	if err := o.transport.Close(); err != nil {
		o.log.Debug("transport close", "session", o.id, "error", err)
	}
}
