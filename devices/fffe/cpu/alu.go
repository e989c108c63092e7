package cpu

import "github.com/hexaflex/vcpu/arch"

// Registers holds the processor's register file.
type Registers struct {
	A, B, X, Y uint16
	PC         uint16      // Program counter.
	SP         uint16      // Data stack pointer.
	CallSP     uint16      // Call stack pointer.
	Status     arch.Status // Processor status flags.
}

// Value returns the register with the given arch.Reg* index.
func (r Registers) Value(reg int) uint16 {
	switch reg {
	case arch.RegA:
		return r.A
	case arch.RegB:
		return r.B
	case arch.RegX:
		return r.X
	case arch.RegY:
		return r.Y
	case arch.RegPC:
		return r.PC
	case arch.RegSP:
		return r.SP
	case arch.RegCallSP:
		return r.CallSP
	case arch.RegStatus:
		return uint16(r.Status)
	}
	return 0
}

// ALU performs integer arithmetic on A, B and the status flags of the
// register file it is bound to.
type ALU struct {
	r *Registers
}

func (u ALU) carry() uint32 {
	if u.r.Status.Has(arch.Carry) {
		return 1
	}
	return 0
}

// setZN sets Z if v is zero, or N if its sign bit is set.
func (u ALU) setZN(v uint16) {
	switch {
	case v == 0:
		u.r.Status |= arch.Zero
	case v&0x8000 != 0:
		u.r.Status |= arch.Negative
	}
}

// Add computes A = A + right + C.
//
// V is only set when two positive operands produce a negative result.
func (u ALU) Add(right uint16) {
	r := u.r
	res := uint32(r.A) + uint32(right) + u.carry()

	r.Status &^= arch.Arithmetic
	u.setZN(uint16(res))
	r.Status.Set(arch.Carry, res > 0xffff)
	r.Status.Set(arch.Overflow, r.A&0x8000 == 0 && right&0x8000 == 0 && res&0x8000 != 0)
	r.A = uint16(res)
}

// Sub computes A = A - right - (1 - C).
//
// C doubles as the inverted borrow: it is set when no borrow occurred.
// A borrow sets V instead.
func (u ALU) Sub(right uint16) {
	r := u.r
	res := 0xffff + uint32(r.A) - uint32(right) + u.carry()

	r.Status &^= arch.Arithmetic
	u.setZN(uint16(res))
	if res > 0xffff {
		r.Status |= arch.Carry
	} else {
		r.Status |= arch.Overflow
	}
	r.A = uint16(res)
}

// MultUnsigned computes A = A * right. If the product does not fit, V is
// set and A is left alone.
func (u ALU) MultUnsigned(right uint16) {
	r := u.r
	res := uint32(r.A) * uint32(right) & 0xffff

	r.Status &^= arch.Arithmetic
	if right != 0 && res/uint32(right) != uint32(r.A) {
		r.Status |= arch.Overflow
		return
	}

	u.setZN(uint16(res))
	r.A = uint16(res)
}

// MultSigned computes A = A * right on two's complement values by
// multiplying magnitudes and fixing the sign afterwards. The result is
// always stored; V flags a magnitude which does not fit 15 bits. N is set
// whenever the operand signs differ, zero products included.
func (u ALU) MultSigned(right uint16) {
	r := u.r
	ma, na := magnitude(r.A)
	mr, nr := magnitude(right)
	res := ma * mr

	r.Status &^= arch.Arithmetic
	r.Status.Set(arch.Overflow, res > 0x7fff)

	res &= 0xffff
	if na != nr {
		res = -res & 0xffff
		r.Status |= arch.Negative
	}

	r.Status.Set(arch.Zero, res == 0)
	r.A = uint16(res)
}

func magnitude(v uint16) (uint32, bool) {
	if v&0x8000 != 0 {
		return uint32(-int32(int16(v))), true
	}
	return uint32(v), false
}

// DivUnsigned computes A = A / right and B = A % right.
// right must not be zero.
func (u ALU) DivUnsigned(right uint16) {
	r := u.r
	q, rem := r.A/right, r.A%right

	r.Status &^= arch.Arithmetic
	u.setZN(q)
	r.A = q
	r.B = rem
}

// DivSigned computes A = A / right and B = A % right on two's complement
// values, truncating towards zero. right must not be zero.
func (u ALU) DivSigned(right uint16) {
	r := u.r
	a, d := int32(int16(r.A)), int32(int16(right))
	q, rem := a/d, a%d

	r.Status &^= arch.Arithmetic
	r.Status.Set(arch.Overflow, q > 0x7fff)
	u.setZN(uint16(q))
	r.A = uint16(q)
	r.B = uint16(rem)
}

// Logical operators.
const (
	And = iota
	Or
	Xor
	Not
)

// Logic applies a bitwise operator to A and right.
func (u ALU) Logic(op int, right uint16) {
	r := u.r

	switch op {
	case And:
		r.A &= right
	case Or:
		r.A |= right
	case Xor:
		r.A ^= right
	case Not:
		r.A = ^r.A
	}

	r.Status &^= arch.Negative | arch.Zero
	u.setZN(r.A)
}

// Step returns v+delta, updating Z and N.
func (u ALU) Step(v uint16, delta int, short bool) uint16 {
	res := uint16(int(v) + delta)
	if short {
		res &= 0xff
	}

	u.r.Status &^= arch.Negative | arch.Zero
	u.setZN(res)
	if short && res&0x80 != 0 {
		u.r.Status |= arch.Negative
	}
	return res
}

// Shift operators.
const (
	ShiftLeft = iota
	ShiftRight
	RotateLeft
	RotateRight
)

// Shift shifts or rotates v by one bit. Rotations pass through C, and the
// bit shifted out always lands in C. Short values are 8 bits wide.
func (u ALU) Shift(op int, v uint16, short bool) uint16 {
	r := u.r
	mask, msb := uint16(0xffff), uint16(0x8000)
	if short {
		mask, msb = 0xff, 0x80
	}

	v &= mask
	carry := r.Status.Has(arch.Carry)

	var res uint16
	var out bool

	switch op {
	case ShiftLeft:
		out = v&msb != 0
		res = v << 1 & mask
	case ShiftRight:
		out = v&1 != 0
		res = v >> 1
	case RotateLeft:
		out = v&msb != 0
		res = v << 1 & mask
		if carry {
			res |= 1
		}
	case RotateRight:
		out = v&1 != 0
		res = v >> 1
		if carry {
			res |= msb
		}
	}

	r.Status &^= arch.Negative | arch.Zero | arch.Carry
	r.Status.Set(arch.Carry, out)
	r.Status.Set(arch.Zero, res == 0)
	r.Status.Set(arch.Negative, res&msb != 0)
	return res
}

// Compare sets Z if reg equals v and C if reg >= v, both unsigned.
func (u ALU) Compare(reg, v uint16) {
	r := u.r
	r.Status &^= arch.Zero | arch.Carry
	r.Status.Set(arch.Zero, reg == v)
	r.Status.Set(arch.Carry, reg >= v)
}
