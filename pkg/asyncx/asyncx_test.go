package asyncx_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/asyncx"
)

func yes(context.Context) (bool, error) { return true, nil }
func no(context.Context) (bool, error)  { return false, nil }

func failing(err error) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) { return false, err }
}

func TestEveryAllTrue(t *testing.T) {
	ok, err := asyncx.Every(context.Background(), yes, yes, yes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected true when every predicate holds")
	}
}

func TestEveryOneFalse(t *testing.T) {
	ok, err := asyncx.Every(context.Background(), yes, no, yes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected false when one predicate fails")
	}
}

func TestEveryEmptyIsTrue(t *testing.T) {
	ok, err := asyncx.Every(context.Background())
	if err != nil || !ok {
		t.Fatalf("empty Every should be (true, nil), got (%v, %v)", ok, err)
	}
}

func TestEveryPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	ok, err := asyncx.Every(context.Background(), yes, failing(boom))
	if ok {
		t.Fatal("expected false on error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestEveryCancelsRemainingOnFalse(t *testing.T) {
	var sawCancel atomic.Bool

	slow := func(ctx context.Context) (bool, error) {
		select {
		case <-ctx.Done():
			sawCancel.Store(true)
			return false, ctx.Err()
		case <-time.After(5 * time.Second):
			return true, nil
		}
	}

	start := time.Now()
	ok, err := asyncx.Every(context.Background(), no, slow)
	if ok || err != nil {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Every did not short-circuit on false")
	}

	// Give the cancelled goroutine a moment to observe ctx.Done.
	time.Sleep(50 * time.Millisecond)
	if !sawCancel.Load() {
		t.Fatal("remaining predicate was not cancelled")
	}
}

func TestSomeOneTrue(t *testing.T) {
	ok, err := asyncx.Some(context.Background(), no, yes, no)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected true when at least one predicate holds")
	}
}

func TestSomeAllFalse(t *testing.T) {
	ok, err := asyncx.Some(context.Background(), no, no)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected false when no predicate holds")
	}
}

func TestSomeEmptyIsFalse(t *testing.T) {
	ok, err := asyncx.Some(context.Background())
	if err != nil || ok {
		t.Fatalf("empty Some should be (false, nil), got (%v, %v)", ok, err)
	}
}

func TestSomeErrorOnlyWhenNoSuccess(t *testing.T) {
	boom := errors.New("boom")

	// A success makes the error irrelevant.
	ok, err := asyncx.Some(context.Background(), failing(boom), yes)
	if !ok || err != nil {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}

	// No success: the error must surface.
	ok, err = asyncx.Some(context.Background(), failing(boom), no)
	if ok {
		t.Fatal("expected false")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
