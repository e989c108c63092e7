package arch

import "fmt"

// Signal identifies a processor signal. Its value doubles as the
// index into the signal vector table.
type Signal byte

// Known signals.
const (
	SIGRESET Signal = iota // Re-initialize the machine.
	SIGSEGV                // Invalid memory access.
	SIGKILL                // Explicit abort.
	SIGILL                 // Illegal instruction or address mode.
	SIGFPE                 // Arithmetic fault.
	SIGSTK                 // Stack over- or underflow.
	SIGSYS                 // Unknown or unserviceable syscall.
	SIGINT                 // Host or software interrupt.
)

// IsFatal returns true for signals which can never be handled.
func (s Signal) IsFatal() bool {
	return s == SIGSEGV || s == SIGKILL
}

// Vector returns the address of the signal's vector table slot.
func (s Signal) Vector() int {
	return VectorTable + int(s)*WordBytes
}

func (s Signal) String() string {
	switch s {
	case SIGRESET:
		return "SIGRESET"
	case SIGSEGV:
		return "SIGSEGV"
	case SIGKILL:
		return "SIGKILL"
	case SIGILL:
		return "SIGILL"
	case SIGFPE:
		return "SIGFPE"
	case SIGSTK:
		return "SIGSTK"
	case SIGSYS:
		return "SIGSYS"
	case SIGINT:
		return "SIGINT"
	}
	return fmt.Sprintf("SIG%d", byte(s))
}
