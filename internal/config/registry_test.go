package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hireloop-ai/hireloop/internal/config"
	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
	llmmock "github.com/hireloop-ai/hireloop/pkg/provider/llm/mock"
	"github.com/hireloop-ai/hireloop/pkg/provider/stt"
	sttmock "github.com/hireloop-ai/hireloop/pkg/provider/stt/mock"
	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
)

func TestRegistryCreate(t *testing.T) {
	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterLLM("fake", func(entry config.ProviderEntry) (llm.Provider, error) {
		gotEntry = entry
		return &llmmock.Provider{}, nil
	})

	entry := config.ProviderEntry{Name: "fake", Model: "m1", APIKey: "key"}
	p, err := reg.CreateLLM(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("provider is nil")
	}
	if gotEntry.Model != "m1" || gotEntry.APIKey != "key" {
		t.Errorf("factory entry = %+v", gotEntry)
	}
}

func TestRegistryNotRegistered(t *testing.T) {
	reg := config.NewRegistry()

	if _, err := reg.CreateLLM(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("llm err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("stt err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("tts err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	reg := config.NewRegistry()

	first := &sttmock.Provider{Text: "first"}
	second := &sttmock.Provider{Text: "second"}
	reg.RegisterSTT("dup", func(config.ProviderEntry) (stt.Provider, error) {
		return first, nil
	})
	reg.RegisterSTT("dup", func(config.ProviderEntry) (stt.Provider, error) {
		return second, nil
	})

	p, err := reg.CreateSTT(config.ProviderEntry{Name: "dup"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := p.Transcribe(context.Background(), nil)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "second" {
		t.Errorf("got provider %q, want the later registration to win", text)
	}
}

func TestRegistryTTSFactoryError(t *testing.T) {
	reg := config.NewRegistry()
	wantErr := errors.New("bad credentials")
	reg.RegisterTTS("broken", func(config.ProviderEntry) (tts.Provider, error) {
		return nil, wantErr
	})

	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "broken"}); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want factory error passed through", err)
	}
}
