package event

import "sync/atomic"

// Connectivity bits. Any task may set or clear them; readers must treat the
// register as eventually consistent, not transactional.
const (
	BitWifi uint32 = 1 << iota
	BitWS
	BitMQTT
	BitPortal
)

// Conn is the shared connectivity status register.
type Conn struct {
	bits atomic.Uint32
}

// Set turns the given bits on.
func (c *Conn) Set(bits uint32) {
	for {
		old := c.bits.Load()
		if c.bits.CompareAndSwap(old, old|bits) {
			return
		}
	}
}

// Clear turns the given bits off.
func (c *Conn) Clear(bits uint32) {
	for {
		old := c.bits.Load()
		if c.bits.CompareAndSwap(old, old&^bits) {
			return
		}
	}
}

// Has reports whether all given bits are currently set.
func (c *Conn) Has(bits uint32) bool {
	return c.bits.Load()&bits == bits
}
