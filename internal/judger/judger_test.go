package judger

import (
	"errors"
	"testing"
)

func TestCachableBlockMissThenHit(t *testing.T) {
	root := t.TempDir()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "computed-value", nil
	}

	v1, err := CachableBlock(root, "same-input", compute)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if v1 != "computed-value" {
		t.Fatalf("got %q, want computed-value", v1)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}

	v2, err := CachableBlock(root, "same-input", compute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if v2 != v1 {
		t.Fatalf("cache hit returned %q, want %q", v2, v1)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times after cache hit, want still 1", calls)
	}
}

func TestCachableBlockDifferentInputsMiss(t *testing.T) {
	root := t.TempDir()
	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	a, err := CachableBlock(root, "input-a", compute)
	if err != nil {
		t.Fatalf("input-a: %v", err)
	}
	b, err := CachableBlock(root, "input-b", compute)
	if err != nil {
		t.Fatalf("input-b: %v", err)
	}
	if a == b {
		t.Fatalf("distinct inputs should not share a cache entry, got %d == %d", a, b)
	}
	if calls != 2 {
		t.Fatalf("compute called %d times, want 2", calls)
	}
}

func TestCachableBlockEmptyRootBypassesCache(t *testing.T) {
	calls := 0
	compute := func() (string, error) {
		calls++
		return "v", nil
	}
	for i := 0; i < 3; i++ {
		if _, err := CachableBlock("", "same-input", compute); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if calls != 3 {
		t.Fatalf("compute called %d times with empty cache root, want 3 (no caching)", calls)
	}
}

func TestCachableBlockPropagatesComputeError(t *testing.T) {
	root := t.TempDir()
	wantErr := errors.New("boom")
	_, err := CachableBlock(root, "input", func() (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got err %v, want %v", err, wantErr)
	}
}
