package resilience

import (
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("test error")

func TestNewBreakerDefaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test"})
	if b.threshold != 3 {
		t.Errorf("threshold = %d, want 3", b.threshold)
	}
	if b.cooldown != 20*time.Second {
		t.Errorf("cooldown = %v, want 20s", b.cooldown)
	}
	if b.State() != BreakerClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
}

func TestBreakerClosedForwardsCalls(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test"})
	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 3, Cooldown: time.Hour})

	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { return errTest })
	}
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open after 3 failures", b.State())
	}

	err := b.Do(func() error {
		t.Fatal("fn must not run while open")
		return nil
	})
	if !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("err = %v, want ErrBreakerOpen", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 3, Cooldown: time.Hour})

	_ = b.Do(func() error { return errTest })
	_ = b.Do(func() error { return errTest })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return errTest })
	_ = b.Do(func() error { return errTest })

	if b.State() != BreakerClosed {
		t.Errorf("state = %v, want closed (no 3 consecutive failures)", b.State())
	}
}

func TestBreakerHalfOpenProbeCloses(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 1, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	_ = b.Do(func() error { return errTest })
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	// Advance past the cooldown; the next call is a probe.
	now = now.Add(2 * time.Minute)
	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %v, want half-open after cooldown", b.State())
	}

	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("probe should run: %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("state = %v, want closed after successful probe", b.State())
	}
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 1, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	_ = b.Do(func() error { return errTest })
	now = now.Add(2 * time.Minute)

	if err := b.Do(func() error { return errTest }); !errors.Is(err, errTest) {
		t.Fatalf("probe err = %v", err)
	}
	if b.State() != BreakerOpen {
		t.Errorf("state = %v, want re-opened after failed probe", b.State())
	}
}

func TestBreakerHalfOpenSingleProbe(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 1, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	_ = b.Do(func() error { return errTest })
	now = now.Add(2 * time.Minute)

	probing := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(func() error {
			close(probing)
			<-release
			return nil
		})
	}()
	<-probing

	// A second call while the probe is in flight must be rejected.
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("concurrent call err = %v, want ErrBreakerOpen", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("probe err = %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreakerReset(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", Threshold: 1, Cooldown: time.Hour})
	_ = b.Do(func() error { return errTest })
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	b.Reset()
	if b.State() != BreakerClosed {
		t.Errorf("state = %v, want closed after reset", b.State())
	}
	if err := b.Do(func() error { return nil }); err != nil {
		t.Errorf("call after reset: %v", err)
	}
}
