// Package gtranslate provides a TTS provider backed by the Google Translate
// speech endpoint — the same unauthenticated MP3 service the gTTS library
// wraps. It needs no API key, which makes it the default synthesis backend
// for local development.
//
// The endpoint caps each request at roughly 200 characters, so longer
// utterances are split on sentence and whitespace boundaries and the
// resulting MP3 segments are concatenated. MP3 frames are self-contained,
// so simple concatenation produces a valid playable stream.
package gtranslate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
)

const (
	defaultBaseURL  = "https://translate.google.com"
	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second

	ttsEndpoint = "/translate_tts"

	// maxChunkLen is the per-request character budget. The endpoint rejects
	// queries much beyond 200 characters.
	maxChunkLen = 200
)

// Compile-time assertion that Provider implements tts.Provider.
var _ tts.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the speech language code (e.g., "en", "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithBaseURL overrides the Google Translate host. Used by tests to point at
// a local server.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements tts.Provider against the Google Translate TTS endpoint.
type Provider struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// New creates a new Provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Synthesize implements tts.Provider. It fetches one MP3 segment per text
// chunk and concatenates the results.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("gtranslate: text must not be empty")
	}

	var out []byte
	for _, chunk := range splitChunks(text, maxChunkLen) {
		seg, err := p.fetchSegment(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, seg...)
	}
	return out, nil
}

// fetchSegment requests the MP3 audio for a single chunk of text.
func (p *Provider) fetchSegment(ctx context.Context, chunk string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", p.language)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+ttsEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gtranslate: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtranslate: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtranslate: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtranslate: read body: %w", err)
	}
	return data, nil
}

// splitChunks breaks text into pieces no longer than limit, preferring
// sentence-ending punctuation and falling back to whitespace. A single word
// longer than limit is emitted as its own oversized chunk rather than being
// cut mid-word.
func splitChunks(text string, limit int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > limit {
		cut := lastBreak(remaining[:limit+1])
		if cut <= 0 {
			// No break point inside the window; take the next whole word.
			next := strings.IndexAny(remaining, " \t\n")
			if next < 0 {
				break
			}
			cut = next
		}
		chunk := strings.TrimSpace(remaining[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}

	if remaining != "" {
		chunks = append(chunks, remaining)
	}
	return chunks
}

// lastBreak returns the index just past the last sentence-ending punctuation
// in s, or the index of the last whitespace when no punctuation is present.
// Returns -1 when s has no break point at all.
func lastBreak(s string) int {
	if i := strings.LastIndexAny(s, ".!?"); i >= 0 {
		return i + 1
	}
	return strings.LastIndexAny(s, " \t\n")
}
