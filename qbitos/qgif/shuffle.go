package qgif

import "math/rand"

// ShuffleBag hands out every eligible item exactly once per pass, in
// Fisher-Yates order, and never repeats an item across a pass boundary
// (when more than one item exists).
type ShuffleBag struct {
	// Reload re-enumerates eligible items when the bag empties. nil keeps
	// reshuffling the current items.
	Reload func() []string

	rnd   *rand.Rand
	items []string
	pos   int
}

// NewShuffleBag creates a bag using the given random source (nil for the
// global source).
func NewShuffleBag(rnd *rand.Rand) *ShuffleBag {
	return &ShuffleBag{rnd: rnd}
}

func (b *ShuffleBag) intn(n int) int {
	if b.rnd != nil {
		return b.rnd.Intn(n)
	}
	return rand.Intn(n)
}

// Build fills the bag with items, shuffles, and resets the cursor.
func (b *ShuffleBag) Build(items []string) {
	b.items = append(b.items[:0], items...)
	for i := len(b.items) - 1; i > 0; i-- {
		j := b.intn(i + 1)
		b.items[i], b.items[j] = b.items[j], b.items[i]
	}
	b.pos = 0
}

// Len returns the number of items in the current pass.
func (b *ShuffleBag) Len() int { return len(b.items) }

// Next returns the next item. When the pass is exhausted the bag rebuilds;
// if the new first item equals the item that ended the previous pass it is
// swapped with a uniformly random other position. An empty bag returns "".
func (b *ShuffleBag) Next() string {
	if b.pos >= len(b.items) {
		var last string
		if n := len(b.items); n > 0 {
			last = b.items[n-1]
		}
		b.refill()
		if len(b.items) == 0 {
			return ""
		}
		if len(b.items) > 1 && b.items[0] == last {
			sw := 1 + b.intn(len(b.items)-1)
			b.items[0], b.items[sw] = b.items[sw], b.items[0]
		}
	}

	item := b.items[b.pos]
	b.pos++
	return item
}

func (b *ShuffleBag) refill() {
	if b.Reload != nil {
		b.Build(b.Reload())
		return
	}
	b.Build(b.items)
}
