package whisper_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hireloop-ai/hireloop/pkg/provider/stt/whisper"
)

func TestNewRequiresServerURL(t *testing.T) {
	if _, err := whisper.New(""); err == nil {
		t.Error("expected error for empty serverURL")
	}
}

func TestTranscribe(t *testing.T) {
	var gotLanguage, gotModel string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path = %q, want /inference", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")

		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		buf := make([]byte, 64)
		n, _ := f.Read(buf)
		gotAudio = buf[:n]

		json.NewEncoder(w).Encode(map[string]string{"text": "  hello world \n"})
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL,
		whisper.WithLanguage("de"),
		whisper.WithModel("base.en"),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	text, err := p.Transcribe(t.Context(), []byte("webm-bytes"))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want trimmed transcript", text)
	}
	if gotLanguage != "de" || gotModel != "base.en" {
		t.Errorf("fields = %q/%q", gotLanguage, gotModel)
	}
	if string(gotAudio) != "webm-bytes" {
		t.Errorf("audio = %q", gotAudio)
	}
}

func TestTranscribeEmptyAudioShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("server must not be called for empty audio")
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text, err := p.Transcribe(t.Context(), nil)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := p.Transcribe(t.Context(), []byte("x")); err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("err = %v, want server error surfaced", err)
	}
}

func TestTranscribeHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := p.Transcribe(t.Context(), []byte("x")); err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v, want status error", err)
	}
}
