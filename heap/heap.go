// Package heap implements the first-fit block allocator which manages
// the heap region of a machine's memory.
//
// The allocator only keeps books: it never touches memory itself. Callers
// copy block contents when Reallocate moves a block.
package heap

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/translate"
)

var f = translate.From

// ErrUnknownAddress is returned when freeing an address which does not
// start a live block.
var ErrUnknownAddress = errors.New(f("unknown heap address"))

// Object describes one live allocation.
type Object struct {
	Address int // First byte of the block.
	Size    int // Block size in bytes.
}

// End returns the first address past the block.
func (o Object) End() int {
	return o.Address + o.Size
}

func (o Object) String() string {
	return fmt.Sprintf("%04x+%d", o.Address, o.Size)
}

// Allocator manages the blocks in [floor, ceiling).
//
// The block list is kept ordered by address and free of overlaps at all
// times. Mutations shift entries in place instead of re-sorting.
type Allocator struct {
	floor   int
	ceiling int
	objects []Object
}

// New creates an allocator for the region [floor, ceiling).
func New(floor, ceiling int) *Allocator {
	return &Allocator{
		floor:   floor,
		ceiling: ceiling,
	}
}

// Floor returns the first address of the heap.
func (a *Allocator) Floor() int { return a.floor }

// Ceiling returns the first address past the heap.
func (a *Allocator) Ceiling() int { return a.ceiling }

// Objects returns a copy of the live blocks in address order.
func (a *Allocator) Objects() []Object {
	return append([]Object(nil), a.objects...)
}

// Len returns the number of live blocks.
func (a *Allocator) Len() int {
	return len(a.objects)
}

// Reset discards all allocations.
func (a *Allocator) Reset() {
	a.objects = a.objects[:0]
}

// Allocate reserves size bytes in the first gap large enough to hold them.
// Returns false if size is zero or no gap fits; the allocator is left
// untouched in that case.
func (a *Allocator) Allocate(size int) (int, bool) {
	if size <= 0 {
		return 0, false
	}

	start := a.floor
	for i, obj := range a.objects {
		if obj.Address-start >= size {
			a.insert(i, Object{Address: start, Size: size})
			return start, true
		}
		start = obj.End()
	}

	if a.ceiling-start >= size {
		a.insert(len(a.objects), Object{Address: start, Size: size})
		return start, true
	}

	return 0, false
}

// Reallocation describes the outcome of a successful Reallocate call.
type Reallocation struct {
	Object          // The block after resizing.
	Previous Object // The block before resizing. Zero for fresh allocations.
}

// Moved returns true if the caller must copy the old contents over.
func (r Reallocation) Moved() bool {
	return r.Previous.Size > 0 && r.Previous.Address != r.Address
}

// CopySize returns the number of bytes to carry over on a move.
func (r Reallocation) CopySize() int {
	return min(r.Previous.Size, r.Size)
}

// Reallocate resizes the block starting at address.
//
// Unknown addresses fail, unless create is set, in which case a fresh
// block is allocated. Blocks grow in place when the gap to their
// successor allows it and move elsewhere when it does not. The last block
// only grows in place. Shrinking is accepted and leaves the block as is.
func (a *Allocator) Reallocate(address, size int, create bool) (Reallocation, bool) {
	i, found := a.find(address)
	if !found {
		if !create {
			return Reallocation{}, false
		}
		addr, ok := a.Allocate(size)
		if !ok {
			return Reallocation{}, false
		}
		return Reallocation{Object: a.objects[a.mustFind(addr)]}, true
	}

	obj := a.objects[i]
	if size <= obj.Size {
		return Reallocation{Object: obj, Previous: obj}, true
	}

	if i == len(a.objects)-1 {
		if obj.Address+size > a.ceiling {
			return Reallocation{}, false
		}
		a.objects[i].Size = size
		return Reallocation{Object: a.objects[i], Previous: obj}, true
	}

	gap := a.objects[i+1].Address - obj.End()
	if size <= obj.Size+gap {
		a.objects[i].Size = size
		return Reallocation{Object: a.objects[i], Previous: obj}, true
	}

	addr, ok := a.Allocate(size)
	if !ok {
		return Reallocation{}, false
	}

	a.remove(a.mustFind(obj.Address))
	return Reallocation{Object: a.objects[a.mustFind(addr)], Previous: obj}, true
}

// Free releases the block starting at address.
func (a *Allocator) Free(address int) error {
	i, ok := a.find(address)
	if !ok {
		return errors.Wrapf(ErrUnknownAddress, "%04x", address)
	}
	a.remove(i)
	return nil
}

// find returns the index of the block starting at address.
func (a *Allocator) find(address int) (int, bool) {
	i := sort.Search(len(a.objects), func(i int) bool {
		return a.objects[i].Address >= address
	})
	return i, i < len(a.objects) && a.objects[i].Address == address
}

func (a *Allocator) mustFind(address int) int {
	i, ok := a.find(address)
	if !ok {
		panic(fmt.Sprintf("heap: block %04x vanished", address))
	}
	return i
}

func (a *Allocator) insert(i int, obj Object) {
	a.objects = append(a.objects, Object{})
	copy(a.objects[i+1:], a.objects[i:])
	a.objects[i] = obj
}

func (a *Allocator) remove(i int) {
	copy(a.objects[i:], a.objects[i+1:])
	a.objects = a.objects[:len(a.objects)-1]
}
