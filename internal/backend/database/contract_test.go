package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestSubmission(t *testing.T, handle string) *Submission {
	t.Helper()

	id, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID error: %v", err)
	}
	return &Submission{
		ID:        id,
		Image:     "data:image/png;base64,iVBORw0KGgo=",
		Handle:    handle,
		CreatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

// runStoreContract checks the behaviour every backend shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) DatabaseService) {
	t.Run("empty", func(t *testing.T) {
		ds := newStore(t)
		got, err := ds.All(context.Background())
		if err != nil {
			t.Fatalf("All error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty store, got %d submissions", len(got))
		}
	})

	t.Run("insertion order", func(t *testing.T) {
		ds := newStore(t)
		ctx := context.Background()

		const n = 25
		var want []string
		for i := 0; i < n; i++ {
			s := newTestSubmission(t, fmt.Sprintf("user%d", i))
			if err := ds.Append(ctx, s); err != nil {
				t.Fatalf("Append #%d error: %v", i, err)
			}
			want = append(want, s.ID)
		}

		got, err := ds.All(ctx)
		if err != nil {
			t.Fatalf("All error: %v", err)
		}
		if len(got) != n {
			t.Fatalf("expected %d submissions, got %d", n, len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("position %d: got id %q, want %q", i, got[i].ID, want[i])
			}
		}
	})

	t.Run("duplicate handles are kept", func(t *testing.T) {
		ds := newStore(t)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			if err := ds.Append(ctx, newTestSubmission(t, "bob")); err != nil {
				t.Fatalf("Append error: %v", err)
			}
		}
		got, err := ds.All(ctx)
		if err != nil {
			t.Fatalf("All error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 submissions, got %d", len(got))
		}
	})

	t.Run("round trip fields", func(t *testing.T) {
		ds := newStore(t)
		ctx := context.Background()

		s := newTestSubmission(t, "alice")
		if err := ds.Append(ctx, s); err != nil {
			t.Fatalf("Append error: %v", err)
		}
		got, err := ds.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID error: %v", err)
		}
		if got.Handle != s.Handle || got.Image != s.Image || !got.CreatedAt.Equal(s.CreatedAt) {
			t.Fatalf("GetByID = %+v, want %+v", got, s)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		ds := newStore(t)
		_, err := ds.GetByID(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetByID(missing) error = %v, want ErrNotFound", err)
		}
	})
}
