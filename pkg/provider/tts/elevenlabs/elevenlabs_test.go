package elevenlabs_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/hireloop-ai/hireloop/pkg/provider/tts/elevenlabs"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := elevenlabs.New(""); err == nil {
		t.Error("expected error for empty apiKey")
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	p, err := elevenlabs.New("key")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := p.Synthesize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

// streamCapture records what the client sent over the fake stream-input
// endpoint.
type streamCapture struct {
	path     string
	apiKey   string
	text     string
	sawFlush bool
}

// newFakeStream serves just enough of the ElevenLabs stream-input protocol to
// exercise the client: it consumes the handshake, text, and flush frames,
// then sends the given audio chunks. When final is true the last chunk
// carries the isFinal marker; otherwise the server just closes the stream.
func newFakeStream(t *testing.T, chunks [][]byte, final bool) (*streamCapture, string) {
	t.Helper()
	rec := &streamCapture{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path + "?" + r.URL.RawQuery
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}

		ctx := r.Context()
		for i := 0; i < 3; i++ {
			_, data, err := conn.Read(ctx)
			if err != nil {
				t.Errorf("server read: %v", err)
				return
			}
			var frame struct {
				Text     string `json:"text"`
				XiAPIKey string `json:"xi_api_key"`
			}
			if err := json.Unmarshal(data, &frame); err != nil {
				t.Errorf("server decode: %v", err)
				return
			}
			switch i {
			case 0:
				rec.apiKey = frame.XiAPIKey
			case 1:
				rec.text = frame.Text
			case 2:
				rec.sawFlush = frame.Text == ""
			}
		}

		for i, chunk := range chunks {
			data, _ := json.Marshal(map[string]any{
				"audio":   base64.StdEncoding.EncodeToString(chunk),
				"isFinal": final && i == len(chunks)-1,
			})
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				t.Errorf("server write: %v", err)
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)

	// Two %s verbs for voice and model, matching the real endpoint shape.
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/tts/%s/stream-input?model_id=%s"
	return rec, endpoint
}

func TestSynthesizeCollectsStream(t *testing.T) {
	rec, endpoint := newFakeStream(t, [][]byte{[]byte("chunk-a"), []byte("chunk-b")}, true)

	p, err := elevenlabs.New("secret-key",
		elevenlabs.WithEndpoint(endpoint),
		elevenlabs.WithVoice("voice-1"),
		elevenlabs.WithModel("model-1"),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	audio, err := p.Synthesize(t.Context(), "Hello there")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "chunk-achunk-b" {
		t.Errorf("audio = %q, want concatenated chunks", audio)
	}

	if !strings.Contains(rec.path, "voice-1") || !strings.Contains(rec.path, "model_id=model-1") {
		t.Errorf("path = %q, want voice and model in URL", rec.path)
	}
	if rec.apiKey != "secret-key" {
		t.Errorf("api key = %q", rec.apiKey)
	}
	if strings.TrimSpace(rec.text) != "Hello there" {
		t.Errorf("text = %q", rec.text)
	}
	if !rec.sawFlush {
		t.Error("no end-of-input flush frame")
	}
}

func TestSynthesizeServerClosesAfterAudio(t *testing.T) {
	// No final marker: the server closes after one chunk, and the audio
	// already received must still be returned.
	_, endpoint := newFakeStream(t, [][]byte{[]byte("partial")}, false)

	p, err := elevenlabs.New("key", elevenlabs.WithEndpoint(endpoint))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	audio, err := p.Synthesize(t.Context(), "Hi")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "partial" {
		t.Errorf("audio = %q, want partial chunk kept", audio)
	}
}
