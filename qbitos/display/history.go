package display

import "qbit/qbitos/event"

// HistorySize is the number of pokes the device remembers.
const HistorySize = 3

// PokeRecord is one received poke. The record owns its bitmap buffers; they
// are released only when the record is evicted from the history ring.
type PokeRecord struct {
	Sender    string
	Text      string
	SenderBmp *event.Bitmap
	TextBmp   *event.Bitmap
	AtMs      uint64
}

func (r *PokeRecord) release() {
	if r == nil {
		return
	}
	r.SenderBmp.Release()
	r.TextBmp.Release()
	r.SenderBmp = nil
	r.TextBmp = nil
}

// Custom reports whether the poke carries its own message text.
func (r *PokeRecord) Custom() bool { return r != nil && r.Text != "" }

// History is a fixed ring of the most recent pokes, index 0 newest. Adding
// past capacity evicts the oldest record and frees its buffers.
type History struct {
	recs [HistorySize]*PokeRecord
	n    int
}

func (h *History) Len() int { return h.n }

// At returns the record at index i (0 = most recent), nil out of range.
func (h *History) At(i int) *PokeRecord {
	if i < 0 || i >= h.n {
		return nil
	}
	return h.recs[i]
}

// Add pushes r to the front.
func (h *History) Add(r *PokeRecord) {
	h.recs[HistorySize-1].release()
	copy(h.recs[1:], h.recs[:HistorySize-1])
	h.recs[0] = r
	if h.n < HistorySize {
		h.n++
	}
}
