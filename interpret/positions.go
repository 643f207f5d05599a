package interpret

import "strconv"

// Allocator hands out BOM positions and guarantees their uniqueness
// across the interpreters that share it.
type Allocator struct {
	used map[string]bool
	next int
}

// NewAllocator creates an allocator whose cursor starts at position 1.
func NewAllocator() *Allocator {
	return &Allocator{used: make(map[string]bool), next: 1}
}

// Used reports whether a position is already taken.
func (a *Allocator) Used(position string) bool {
	return a.used[position]
}

// Claim marks a detected position as taken. It returns false when the
// position was already in use. Numeric positions advance the cursor so
// later automatic allocations do not collide.
func (a *Allocator) Claim(position string) bool {
	if a.used[position] {
		return false
	}
	a.used[position] = true
	if n, err := strconv.Atoi(position); err == nil && n+1 > a.next {
		a.next = n + 1
	}
	return true
}

// Next allocates the next free integer position.
func (a *Allocator) Next() string {
	index := a.next
	if index < 1 {
		index = 1
	}
	for a.used[strconv.Itoa(index)] {
		index++
	}
	position := strconv.Itoa(index)
	a.used[position] = true
	a.next = index + 1
	return position
}
