package arch

import "strings"

// Register indices, in trace column order.
const (
	RegA = iota
	RegB
	RegX
	RegY
	RegPC
	RegSP
	RegCallSP
	RegStatus
)

var registerNames = [...]string{
	RegA:      "A",
	RegB:      "B",
	RegX:      "X",
	RegY:      "Y",
	RegPC:     "PC",
	RegSP:     "SP",
	RegCallSP: "CSP",
	RegStatus: "STATUS",
}

// RegisterName returns the name associated with the given register index.
// Returns "" if the index is not recognized.
func RegisterName(n int) string {
	if n < 0 || n >= len(registerNames) {
		return ""
	}
	return registerNames[n]
}

// Status is the 8-bit processor status register.
type Status byte

// Known status flags.
const (
	Carry         Status = 1 << iota // C
	Zero                             // Z
	FloatingPoint                    // F: 32-bit FPU mode.
	Interrupt                        // I: a signal handler is running.
	Halt                             // H
	Undefined                        // U: FPU produced NaN.
	Overflow                         // V
	Negative                         // N
)

// Arithmetic holds the flags every ALU operation recomputes.
const Arithmetic = Negative | Overflow | Zero | Carry

// Has returns true if all of the given flags are set.
func (s Status) Has(flags Status) bool {
	return s&flags == flags
}

// Set sets or clears the given flags.
func (s *Status) Set(flags Status, v bool) {
	if v {
		*s |= flags
	} else {
		*s &^= flags
	}
}

// String renders the flags from bit 7 down, using '-' for clear bits.
func (s Status) String() string {
	const letters = "NVUHIFZC"
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		if s&(1<<(7-i)) != 0 {
			sb.WriteByte(letters[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
