package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/arch"
	"github.com/hexaflex/vcpu/heap"
	"github.com/hexaflex/vcpu/translate"
)

var f = translate.From

var (
	// Construction errors.
	ErrWordSize        = errors.New(f("incompatible word size"))
	ErrEmptyProgram    = errors.New(f("empty program"))
	ErrProgramTooLarge = errors.New(f("program too large"))

	// Runtime errors.
	ErrSegmentationFault  = errors.New(f("segmentation fault"))
	ErrKill               = errors.New(f("killed"))
	ErrIllegalInstruction = errors.New(f("illegal instruction"))
	ErrArithmeticFault    = errors.New(f("arithmetic fault"))
	ErrStackFault         = errors.New(f("stack fault"))
	ErrSystemFault        = errors.New(f("system fault"))
	ErrInterrupt          = errors.New(f("interrupted"))
	ErrUnknownHeapAddress = heap.ErrUnknownAddress
)

// signalError returns the error surfaced for an unhandled signal.
func signalError(sig arch.Signal) error {
	switch sig {
	case arch.SIGSEGV:
		return ErrSegmentationFault
	case arch.SIGKILL:
		return ErrKill
	case arch.SIGILL:
		return ErrIllegalInstruction
	case arch.SIGFPE:
		return ErrArithmeticFault
	case arch.SIGSTK:
		return ErrStackFault
	case arch.SIGSYS:
		return ErrSystemFault
	case arch.SIGINT:
		return ErrInterrupt
	}
	return errors.New(f("unknown signal %v", sig))
}

// Error defines a runtime error which aborted the program.
type Error struct {
	IP     int         // Address of the faulting instruction.
	Status arch.Status // Status register at the time of the fault.
	Err    error       // What went wrong.
}

func (e *Error) Error() string {
	return f("%04x: %v (status %v)", e.IP, e.Err, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}
