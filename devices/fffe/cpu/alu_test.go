package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hexaflex/vcpu/arch"
)

func newALU(a uint16, status arch.Status) (*Registers, ALU) {
	r := &Registers{A: a, Status: status}
	return r, ALU{r}
}

func TestALUAdd(t *testing.T) {
	tests := []struct {
		a, right uint16
		carry    bool
		want     uint16
		status   arch.Status
	}{
		{1, 1, false, 2, 0},
		{1, 1, true, 3, 0},
		{0xffff, 1, false, 0, arch.Zero | arch.Carry},
		{0x7fff, 1, false, 0x8000, arch.Negative | arch.Overflow},
		{0x7000, 0x1000, false, 0x8000, arch.Negative | arch.Overflow},
		{0x4000, 0x3fff, true, 0x8000, arch.Negative | arch.Overflow},
		{0x8000, 0x8000, false, 0, arch.Zero | arch.Carry},
		{0x8000, 0xffff, false, 0x7fff, arch.Carry},
		{0xffff, 0xffff, false, 0xfffe, arch.Negative | arch.Carry},
	}

	for _, tt := range tests {
		var status arch.Status
		status.Set(arch.Carry, tt.carry)
		r, alu := newALU(tt.a, status|arch.FloatingPoint)

		alu.Add(tt.right)
		if r.A != tt.want || r.Status != tt.status|arch.FloatingPoint {
			t.Fatalf("%04x + %04x (c=%v): want %04x %v; have %04x %v",
				tt.a, tt.right, tt.carry, tt.want, tt.status|arch.FloatingPoint, r.A, r.Status)
		}
	}
}

func TestALUSub(t *testing.T) {
	tests := []struct {
		a, right uint16
		carry    bool
		want     uint16
		status   arch.Status
	}{
		{5, 3, true, 2, arch.Carry},
		{5, 3, false, 1, arch.Carry},
		{5, 5, true, 0, arch.Zero | arch.Carry},
		{3, 5, true, 0xfffe, arch.Negative | arch.Overflow},
		{0, 0, false, 0xffff, arch.Negative | arch.Overflow},
		{0, 0, true, 0, arch.Zero | arch.Carry},
	}

	for _, tt := range tests {
		var status arch.Status
		status.Set(arch.Carry, tt.carry)
		r, alu := newALU(tt.a, status)

		alu.Sub(tt.right)
		if r.A != tt.want || r.Status != tt.status {
			t.Fatalf("%04x - %04x (c=%v): want %04x %v; have %04x %v",
				tt.a, tt.right, tt.carry, tt.want, tt.status, r.A, r.Status)
		}
	}
}

func TestALUAddSubInverse(t *testing.T) {
	values := []uint16{0, 1, 2, 0x7f, 0x80, 0x7fff, 0x8000, 0xfffe, 0xffff}

	for _, a := range values {
		for _, right := range values {
			for _, carry := range []bool{false, true} {
				r, alu := newALU(a, 0)
				r.Status.Set(arch.Carry, carry)
				alu.Add(right)

				r.Status.Set(arch.Carry, !carry)
				alu.Sub(right)

				if r.A != a {
					t.Fatalf("%04x + %04x (c=%v) then back: have %04x", a, right, carry, r.A)
				}
			}
		}
	}
}

func TestALUMultUnsigned(t *testing.T) {
	assert := assert.New(t)

	r, alu := newALU(3, 0)
	alu.MultUnsigned(4)
	assert.Equal(uint16(12), r.A)
	assert.Equal(arch.Status(0), r.Status)

	r, alu = newALU(0x100, 0)
	alu.MultUnsigned(0x100)
	assert.Equal(uint16(0x100), r.A, "overflow leaves A alone")
	assert.Equal(arch.Overflow, r.Status)

	r, alu = newALU(0xffff, arch.Negative)
	alu.MultUnsigned(2)
	assert.Equal(uint16(0xffff), r.A)
	assert.Equal(arch.Overflow, r.Status)

	r, alu = newALU(0x1234, arch.Carry)
	alu.MultUnsigned(0)
	assert.Equal(uint16(0), r.A)
	assert.Equal(arch.Zero, r.Status)
}

func TestALUMultSigned(t *testing.T) {
	tests := []struct {
		a, right uint16
		want     uint16
		status   arch.Status
	}{
		{0xfffd, 4, 0xfff4, arch.Negative},                             // -3 * 4
		{0xfffd, 0xfffc, 12, 0},                                        // -3 * -4
		{0, 0xfffc, 0, arch.Negative | arch.Zero},                      // 0 * -4
		{0xfffc, 0, 0, arch.Negative | arch.Zero},                      // -4 * 0
		{0, 0, 0, arch.Zero},                                           // 0 * 0
		{0x4000, 2, 0x8000, arch.Overflow},                             // result stored regardless
		{0x0100, 0xff00, 0, arch.Overflow | arch.Negative | arch.Zero}, // 256 * -256
	}

	for _, tt := range tests {
		r, alu := newALU(tt.a, 0)
		alu.MultSigned(tt.right)
		if r.A != tt.want || r.Status != tt.status {
			t.Fatalf("%04x * %04x: want %04x %v; have %04x %v", tt.a, tt.right, tt.want, tt.status, r.A, r.Status)
		}
	}
}

func TestALUDiv(t *testing.T) {
	assert := assert.New(t)

	r, alu := newALU(17, 0)
	alu.DivUnsigned(5)
	assert.Equal(uint16(3), r.A)
	assert.Equal(uint16(2), r.B)

	r, alu = newALU(0xffef, 0) // -17
	alu.DivSigned(5)
	assert.Equal(uint16(0xfffd), r.A) // -3
	assert.Equal(uint16(0xfffe), r.B) // -2
	assert.Equal(arch.Negative, r.Status)

	r, alu = newALU(0x8000, 0)
	alu.DivSigned(0xffff)
	assert.Equal(uint16(0x8000), r.A)
	assert.True(r.Status.Has(arch.Overflow))
}

func TestALULogic(t *testing.T) {
	tests := []struct {
		op       int
		a, right uint16
		want     uint16
		status   arch.Status
	}{
		{And, 0xff0f, 0x0ff0, 0x0f00, 0},
		{Or, 0x00f0, 0x0f00, 0x0ff0, 0},
		{Xor, 0xffff, 0xffff, 0, arch.Zero},
		{Not, 0x00ff, 0, 0xff00, arch.Negative},
	}

	for _, tt := range tests {
		r, alu := newALU(tt.a, arch.Carry)
		alu.Logic(tt.op, tt.right)
		if r.A != tt.want || r.Status != tt.status|arch.Carry {
			t.Fatalf("op %d on %04x, %04x: want %04x; have %04x %v", tt.op, tt.a, tt.right, tt.want, r.A, r.Status)
		}
	}
}

func TestALUStep(t *testing.T) {
	assert := assert.New(t)
	r, alu := newALU(0, 0)

	assert.Equal(uint16(0), alu.Step(0xffff, 1, false))
	assert.Equal(arch.Zero, r.Status)

	assert.Equal(uint16(0xffff), alu.Step(0, -1, false))
	assert.Equal(arch.Negative, r.Status)

	assert.Equal(uint16(0), alu.Step(0xff, 1, true))
	assert.Equal(arch.Zero, r.Status)

	assert.Equal(uint16(0x80), alu.Step(0x7f, 1, true))
	assert.Equal(arch.Negative, r.Status)
}

func TestALUShift(t *testing.T) {
	tests := []struct {
		op     int
		v      uint16
		short  bool
		carry  bool
		want   uint16
		status arch.Status
	}{
		{ShiftLeft, 0x8001, false, false, 0x0002, arch.Carry},
		{ShiftLeft, 0x4000, false, true, 0x8000, arch.Negative},
		{ShiftRight, 0x0001, false, true, 0x0000, arch.Zero | arch.Carry},
		{RotateLeft, 0x8000, false, true, 0x0001, arch.Carry},
		{RotateRight, 0x0001, false, false, 0x0000, arch.Zero | arch.Carry},
		{RotateRight, 0x0000, false, true, 0x8000, arch.Negative},
		{ShiftLeft, 0x0080, true, false, 0x0000, arch.Zero | arch.Carry},
		{RotateRight, 0x0100, true, true, 0x0080, arch.Negative},
	}

	for _, tt := range tests {
		var status arch.Status
		status.Set(arch.Carry, tt.carry)
		r, alu := newALU(0, status)

		have := alu.Shift(tt.op, tt.v, tt.short)
		if have != tt.want || r.Status != tt.status {
			t.Fatalf("shift %d of %04x (short=%v, c=%v): want %04x %v; have %04x %v",
				tt.op, tt.v, tt.short, tt.carry, tt.want, tt.status, have, r.Status)
		}
	}
}

func TestALUCompare(t *testing.T) {
	r, alu := newALU(0, arch.Negative|arch.Overflow)

	alu.Compare(3, 3)
	assert.Equal(t, arch.Negative|arch.Overflow|arch.Zero|arch.Carry, r.Status)

	alu.Compare(2, 3)
	assert.Equal(t, arch.Negative|arch.Overflow, r.Status)
}
