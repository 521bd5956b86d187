package qgif

import (
	"math/rand"
	"sort"
	"testing"
)

func TestShuffleBagEmpty(t *testing.T) {
	b := NewShuffleBag(rand.New(rand.NewSource(1)))
	if got := b.Next(); got != "" {
		t.Fatalf("Next() on empty bag = %q, want \"\"", got)
	}
}

func TestShuffleBagSingleItem(t *testing.T) {
	b := NewShuffleBag(rand.New(rand.NewSource(1)))
	b.Build([]string{"only.qgif"})
	for i := 0; i < 10; i++ {
		if got := b.Next(); got != "only.qgif" {
			t.Fatalf("Next() = %q, want only.qgif", got)
		}
	}
}

func TestShuffleBagEachPassIsPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	b := NewShuffleBag(rand.New(rand.NewSource(42)))
	b.Build(items)

	for pass := 0; pass < 20; pass++ {
		got := make([]string, len(items))
		for i := range got {
			got[i] = b.Next()
		}
		sorted := append([]string(nil), got...)
		sort.Strings(sorted)
		for i, want := range items {
			if sorted[i] != want {
				t.Fatalf("pass %d not a permutation: %v", pass, got)
			}
		}
	}
}

func TestShuffleBagNoImmediateRepeat(t *testing.T) {
	b := NewShuffleBag(rand.New(rand.NewSource(7)))
	b.Build([]string{"a", "b", "c"})

	prev := b.Next()
	for i := 0; i < 1000; i++ {
		cur := b.Next()
		if cur == prev {
			t.Fatalf("call %d: %q repeated across boundary", i, cur)
		}
		prev = cur
	}
}

func TestShuffleBagReloadPicksUpNewItems(t *testing.T) {
	items := []string{"a"}
	b := NewShuffleBag(rand.New(rand.NewSource(3)))
	b.Reload = func() []string { return items }
	b.Build(items)

	if got := b.Next(); got != "a" {
		t.Fatalf("Next() = %q, want a", got)
	}

	// A file added at runtime must show up once the one-item pass is
	// exhausted, without an explicit rebuild.
	items = []string{"a", "b"}
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		seen[b.Next()] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("reload missed items, saw %v", seen)
	}
}
