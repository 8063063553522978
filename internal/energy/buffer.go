// Package energy models the capacity-bounded resource buffer a core draws
// its tier from.
package energy

// Container is a capacity-bounded energy store. When simulate is true,
// Receive and Extract report the amount that would move without moving it.
type Container interface {
	Stored() int
	Capacity() int
	Receive(amount int, simulate bool) int
	Extract(amount int, simulate bool) int
}

// Buffer is the default Container. MaxReceive and MaxExtract cap a single
// transfer; zero means uncapped.
type Buffer struct {
	stored     int
	capacity   int
	MaxReceive int
	MaxExtract int
}

// NewBuffer returns a Buffer holding stored, clamped into [0, capacity].
func NewBuffer(capacity, stored int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	b := &Buffer{capacity: capacity}
	b.Set(stored)
	return b
}

func (b *Buffer) Stored() int   { return b.stored }
func (b *Buffer) Capacity() int { return b.capacity }

// Set overwrites the stored amount, clamped into [0, capacity].
func (b *Buffer) Set(stored int) {
	b.stored = clamp(stored, 0, b.capacity)
}

// Receive adds up to amount and returns what was accepted.
func (b *Buffer) Receive(amount int, simulate bool) int {
	if amount <= 0 {
		return 0
	}
	n := min(amount, b.capacity-b.stored)
	if b.MaxReceive > 0 {
		n = min(n, b.MaxReceive)
	}
	if !simulate {
		b.stored += n
	}
	return n
}

// Extract removes up to amount and returns what was removed.
func (b *Buffer) Extract(amount int, simulate bool) int {
	if amount <= 0 {
		return 0
	}
	n := min(amount, b.stored)
	if b.MaxExtract > 0 {
		n = min(n, b.MaxExtract)
	}
	if !simulate {
		b.stored -= n
	}
	return n
}

// Fraction returns stored/capacity in [0, 1]. An empty or zero-capacity
// container reports 0.
func Fraction(c Container) float64 {
	if c == nil || c.Capacity() <= 0 {
		return 0
	}
	f := float64(c.Stored()) / float64(c.Capacity())
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
