package cpu

import (
	"math"

	"github.com/x448/float16"

	"github.com/hexaflex/vcpu/arch"
)

// Floating point operators, in opcode order.
const (
	FAdd = iota
	FSub
	FMult
	FDiv
)

// FPU performs floating point arithmetic on the register file it is
// bound to. With F clear it works on IEEE 754 binary16 values in A.
// With F set it works on binary32 values held in A:B, high word in A.
type FPU struct {
	r *Registers
}

func apply(op int, a, b float32) float32 {
	switch op {
	case FAdd:
		return a + b
	case FSub:
		return a - b
	case FMult:
		return a * b
	}
	return a / b
}

// Half computes A = A op right on binary16 values.
func (u FPU) Half(op int, right uint16) {
	a := float16.Frombits(u.r.A).Float32()
	b := float16.Frombits(right).Float32()
	res := float16.Fromfloat32(apply(op, a, b))

	u.r.A = res.Bits()
	u.flags(res.Float32())
}

// Single computes A:B = A:B op right on binary32 values.
func (u FPU) Single(op int, right uint32) {
	a := math.Float32frombits(uint32(u.r.A)<<16 | uint32(u.r.B))
	b := math.Float32frombits(right)
	res := apply(op, a, b)

	bits := math.Float32bits(res)
	u.r.A = uint16(bits >> 16)
	u.r.B = uint16(bits)
	u.flags(res)
}

// flags sets Z for either zero, N for a negative sign, V for infinities
// and U for NaN.
func (u FPU) flags(v float32) {
	r := u.r
	r.Status &^= arch.Arithmetic | arch.Undefined

	f := float64(v)
	switch {
	case math.IsNaN(f):
		r.Status |= arch.Undefined
		return
	case v == 0:
		r.Status |= arch.Zero
	case math.IsInf(f, 0):
		r.Status |= arch.Overflow
	}

	r.Status.Set(arch.Negative, math.Signbit(f))
}

// isZeroHalf returns true if bits encode a binary16 zero of either sign.
func isZeroHalf(bits uint16) bool {
	return bits&0x7fff == 0
}

// isZeroSingle returns true if bits encode a binary32 zero of either sign.
func isZeroSingle(bits uint32) bool {
	return bits&0x7fffffff == 0
}
