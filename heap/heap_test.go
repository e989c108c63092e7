package heap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func checkObjects(t *testing.T, a *Allocator, want []Object) {
	t.Helper()
	if diff := cmp.Diff(want, a.Objects()); diff != "" {
		t.Fatalf("block list mismatch (-want +have):\n%s", diff)
	}
}

// checkInvariants verifies ordering, overlap and bounds of the block list.
func checkInvariants(t *testing.T, a *Allocator) {
	t.Helper()
	prevEnd := a.Floor()
	for _, obj := range a.Objects() {
		if obj.Address < prevEnd {
			t.Fatalf("block %v overlaps or precedes %04x", obj, prevEnd)
		}
		if obj.End() > a.Ceiling() {
			t.Fatalf("block %v exceeds ceiling %04x", obj, a.Ceiling())
		}
		prevEnd = obj.End()
	}
}

func TestAllocate(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)

	addr, ok := a.Allocate(0x10)
	assert.True(ok)
	assert.Equal(0x100, addr)

	addr, ok = a.Allocate(0x20)
	assert.True(ok)
	assert.Equal(0x110, addr)

	checkObjects(t, a, []Object{{0x100, 0x10}, {0x110, 0x20}})
}

func TestAllocateFirstFit(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)

	first, ok := a.Allocate(10)
	assert.True(ok)
	second, ok := a.Allocate(5)
	assert.True(ok)
	assert.NoError(a.Free(first))

	addr, ok := a.Allocate(8)
	assert.True(ok)
	assert.Equal(first, addr, "freed gap must be reused")
	assert.Less(addr+8, second+1)

	checkObjects(t, a, []Object{{0x100, 8}, {0x10a, 5}})
}

func TestAllocateSkipsSmallGaps(t *testing.T) {
	a := New(0x100, 0x200)

	a.Allocate(4)
	mid, _ := a.Allocate(4)
	a.Allocate(4)
	a.Free(mid)

	addr, ok := a.Allocate(8)
	if !ok || addr != 0x10c {
		t.Fatalf("want 010c; have %04x %v", addr, ok)
	}
	checkObjects(t, a, []Object{{0x100, 4}, {0x108, 4}, {0x10c, 8}})
}

func TestAllocateFailure(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x110)

	_, ok := a.Allocate(0x11)
	assert.False(ok)
	_, ok = a.Allocate(0)
	assert.False(ok)

	addr, ok := a.Allocate(0x10)
	assert.True(ok)
	assert.Equal(0x100, addr)

	_, ok = a.Allocate(1)
	assert.False(ok)
	checkObjects(t, a, []Object{{0x100, 0x10}})
}

func TestFree(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)
	addr, _ := a.Allocate(16)
	a.Allocate(16)

	assert.NoError(a.Free(addr))
	assert.Equal(1, a.Len())

	err := a.Free(addr)
	assert.True(errors.Is(err, ErrUnknownAddress))
	assert.Equal(1, a.Len())

	// Addresses inside a block are not block starts.
	assert.Error(a.Free(0x111))
}

func TestReallocateGrowInPlace(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)
	first, _ := a.Allocate(8)
	second, _ := a.Allocate(8)
	a.Allocate(8)
	a.Free(second)

	r, ok := a.Reallocate(first, 16, false)
	assert.True(ok)
	assert.False(r.Moved())
	assert.Equal(first, r.Address)
	assert.Equal(16, r.Size)
	checkObjects(t, a, []Object{{0x100, 16}, {0x110, 8}})
}

func TestReallocateMove(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)
	first, _ := a.Allocate(8)
	a.Allocate(8)

	r, ok := a.Reallocate(first, 32, false)
	assert.True(ok)
	assert.True(r.Moved())
	assert.Equal(0x110, r.Address)
	assert.Equal(Object{0x100, 8}, r.Previous)
	assert.Equal(8, r.CopySize())
	checkObjects(t, a, []Object{{0x108, 8}, {0x110, 32}})
}

func TestReallocateMoveFailure(t *testing.T) {
	a := New(0x100, 0x120)
	first, _ := a.Allocate(8)
	a.Allocate(8)

	if _, ok := a.Reallocate(first, 0x20, false); ok {
		t.Fatal("expected reallocation to fail")
	}
	checkObjects(t, a, []Object{{0x100, 8}, {0x108, 8}})
}

func TestReallocateLast(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x120)
	addr, _ := a.Allocate(8)

	r, ok := a.Reallocate(addr, 0x20, false)
	assert.True(ok)
	assert.Equal(0x20, r.Size)

	_, ok = a.Reallocate(addr, 0x21, false)
	assert.False(ok)
	checkObjects(t, a, []Object{{0x100, 0x20}})
}

func TestReallocateShrink(t *testing.T) {
	a := New(0x100, 0x200)
	addr, _ := a.Allocate(16)

	r, ok := a.Reallocate(addr, 4, false)
	if !ok || r.Moved() || r.Size != 16 {
		t.Fatalf("shrink must be a no-op; have %+v %v", r, ok)
	}
}

func TestReallocateMissing(t *testing.T) {
	assert := assert.New(t)

	a := New(0x100, 0x200)

	_, ok := a.Reallocate(0x150, 8, false)
	assert.False(ok)
	assert.Equal(0, a.Len())

	r, ok := a.Reallocate(0x150, 8, true)
	assert.True(ok)
	assert.False(r.Moved())
	assert.Equal(Object{0x100, 8}, r.Object)
}

func TestAllocatorRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := New(0x1000, 0x1400)
	live := map[int]int{}

	for i := 0; i < 2000; i++ {
		switch rng.Intn(3) {
		case 0:
			size := rng.Intn(64) + 1
			addr, ok := a.Allocate(size)
			if ok {
				if addr < a.Floor() || addr+size > a.Ceiling() {
					t.Fatalf("block %04x+%d out of bounds", addr, size)
				}
				live[addr] = size
			}
		case 1:
			for addr := range live {
				if err := a.Free(addr); err != nil {
					t.Fatal(err)
				}
				delete(live, addr)
				if err := a.Free(addr); err == nil {
					t.Fatalf("double free of %04x succeeded", addr)
				}
				break
			}
		case 2:
			for addr := range live {
				r, ok := a.Reallocate(addr, rng.Intn(96)+1, false)
				if ok {
					delete(live, addr)
					live[r.Address] = r.Size
				}
				break
			}
		}
		checkInvariants(t, a)
		if a.Len() != len(live) {
			t.Fatalf("have %d blocks; want %d", a.Len(), len(live))
		}
	}
}
