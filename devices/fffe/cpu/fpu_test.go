package cpu

import (
	"math"
	"testing"

	"github.com/x448/float16"

	"github.com/hexaflex/vcpu/arch"
)

func half(v float32) uint16 {
	return float16.Fromfloat32(v).Bits()
}

func TestFPUHalfOps(t *testing.T) {
	tests := []struct {
		op     int
		a, b   float32
		want   float32
		status arch.Status
	}{
		{FAdd, 1, 2, 3, 0},
		{FSub, 1, 2, -1, arch.Negative},
		{FMult, 1.5, -2, -3, arch.Negative},
		{FDiv, 1, 4, 0.25, 0},
		{FSub, 2, 2, 0, arch.Zero},
		{FMult, 65504, 2, float32(math.Inf(1)), arch.Overflow},
		{FMult, -65504, 2, float32(math.Inf(-1)), arch.Overflow | arch.Negative},
	}

	for _, tt := range tests {
		r := &Registers{A: half(tt.a), Status: arch.Carry}
		FPU{r}.Half(tt.op, half(tt.b))

		if r.A != half(tt.want) || r.Status != tt.status {
			t.Fatalf("op %d on %v, %v: want %04x %v; have %04x %v",
				tt.op, tt.a, tt.b, half(tt.want), tt.status, r.A, r.Status)
		}
	}
}

func TestFPUHalfNaN(t *testing.T) {
	inf := half(float32(math.Inf(1)))
	r := &Registers{A: inf}
	FPU{r}.Half(FSub, inf)

	if !float16.Frombits(r.A).IsNaN() {
		t.Fatalf("want NaN; have %04x", r.A)
	}
	if r.Status != arch.Undefined {
		t.Fatalf("want %v; have %v", arch.Undefined, r.Status)
	}
}

func TestFPUSingleOps(t *testing.T) {
	split := func(v float32) (uint16, uint16) {
		bits := math.Float32bits(v)
		return uint16(bits >> 16), uint16(bits)
	}

	tests := []struct {
		op     int
		a, b   float32
		want   float32
		status arch.Status
	}{
		{FAdd, 1.5, 2, 3.5, 0},
		{FSub, 1, 100000, -99999, arch.Negative},
		{FMult, 1e20, 1e20, float32(math.Inf(1)), arch.Overflow},
		{FDiv, 1, 3, 1.0 / 3, 0},
		{FMult, 0, -1, float32(math.Copysign(0, -1)), arch.Zero | arch.Negative},
	}

	for _, tt := range tests {
		r := &Registers{Status: arch.FloatingPoint}
		r.A, r.B = split(tt.a)
		FPU{r}.Single(tt.op, math.Float32bits(tt.b))

		wantA, wantB := split(tt.want)
		if r.A != wantA || r.B != wantB || r.Status != tt.status|arch.FloatingPoint {
			t.Fatalf("op %d on %v, %v: want %04x%04x %v; have %04x%04x %v",
				tt.op, tt.a, tt.b, wantA, wantB, tt.status|arch.FloatingPoint, r.A, r.B, r.Status)
		}
	}
}

func TestFPUZero(t *testing.T) {
	for _, bits := range []uint16{0x0000, 0x8000} {
		if !isZeroHalf(bits) {
			t.Fatalf("%04x is zero", bits)
		}
	}
	if isZeroHalf(0x0001) {
		t.Fatal("subnormals are not zero")
	}
	if !isZeroSingle(0x80000000) || isZeroSingle(0x00000001) {
		t.Fatal("binary32 zero check failed")
	}
}
