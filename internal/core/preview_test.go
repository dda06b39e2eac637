package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func awaitWithTimeout(t *testing.T, p *previewSlot) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.await(ctx)
}

func TestPreviewSlot_Resolves(t *testing.T) {
	p := newPreviewSlot()
	p.request(func() (string, error) { return "data:image/png;base64,AA==", nil })

	got, err := awaitWithTimeout(t, p)
	if err != nil {
		t.Fatalf("await error: %v", err)
	}
	if got != "data:image/png;base64,AA==" {
		t.Fatalf("await = %q", got)
	}
	if p.current() != got {
		t.Fatalf("current = %q, want %q", p.current(), got)
	}
}

func TestPreviewSlot_NothingPendingAwaitReturnsImmediately(t *testing.T) {
	p := newPreviewSlot()
	got, err := awaitWithTimeout(t, p)
	if err != nil || got != "" {
		t.Fatalf("await on empty slot = (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestPreviewSlot_LatestWinsRegardlessOfCompletionOrder(t *testing.T) {
	p := newPreviewSlot()
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	firstDone := make(chan struct{})

	p.request(func() (string, error) {
		defer close(firstDone)
		<-releaseFirst
		return "first", nil
	})
	p.request(func() (string, error) {
		<-releaseSecond
		return "second", nil
	})

	// the older conversion finishes first and must be ignored
	close(releaseFirst)
	<-firstDone
	if got := p.current(); got != "" {
		t.Fatalf("current after stale conversion = %q, want empty", got)
	}

	close(releaseSecond)
	got, err := awaitWithTimeout(t, p)
	if err != nil {
		t.Fatalf("await error: %v", err)
	}
	if got != "second" {
		t.Fatalf("await = %q, want %q", got, "second")
	}
}

func TestPreviewSlot_StaleResolveIsDiscarded(t *testing.T) {
	p := newPreviewSlot()
	block := make(chan struct{})
	defer close(block)

	stale := p.request(func() (string, error) {
		<-block
		return "", nil
	})
	p.request(func() (string, error) { return "fresh", nil })
	if _, err := awaitWithTimeout(t, p); err != nil {
		t.Fatalf("await error: %v", err)
	}

	if p.resolve(stale, "stale", nil) {
		t.Fatal("resolve of superseded generation reported success")
	}
	if got := p.current(); got != "fresh" {
		t.Fatalf("current = %q, want %q", got, "fresh")
	}
}

func TestPreviewSlot_ClearSupersedesInFlight(t *testing.T) {
	p := newPreviewSlot()
	release := make(chan struct{})
	done := make(chan struct{})
	p.request(func() (string, error) {
		defer close(done)
		<-release
		return "late", nil
	})

	p.clear()
	close(release)
	<-done

	got, err := awaitWithTimeout(t, p)
	if err != nil || got != "" {
		t.Fatalf("await after clear = (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestPreviewSlot_Error(t *testing.T) {
	p := newPreviewSlot()
	boom := errors.New("boom")
	p.request(func() (string, error) { return "", boom })

	if _, err := awaitWithTimeout(t, p); !errors.Is(err, boom) {
		t.Fatalf("await error = %v, want %v", err, boom)
	}
	if p.current() != "" {
		t.Fatalf("current = %q, want empty after failed conversion", p.current())
	}
}

func TestPreviewSlot_AwaitHonoursContext(t *testing.T) {
	p := newPreviewSlot()
	block := make(chan struct{})
	defer close(block)
	p.request(func() (string, error) {
		<-block
		return "never", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("await error = %v, want context.Canceled", err)
	}
}

func TestPreviewSlot_WaiterFollowsNewerRequest(t *testing.T) {
	p := newPreviewSlot()
	block := make(chan struct{})
	defer close(block)
	p.request(func() (string, error) {
		<-block
		return "old", nil
	})

	result := make(chan string, 1)
	go func() {
		got, _ := awaitWithTimeout(t, p)
		result <- got
	}()

	// give the waiter a chance to block on the first generation
	time.Sleep(10 * time.Millisecond)
	p.request(func() (string, error) { return "new", nil })

	select {
	case got := <-result:
		if got != "new" {
			t.Fatalf("await = %q, want %q", got, "new")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter stuck on superseded generation")
	}
}
