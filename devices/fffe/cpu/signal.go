package cpu

import (
	"log"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/arch"
)

// IntQueueCapacity capacity of the CPU interrupt queue.
const IntQueueCapacity = 32

// pending holds the signal raised by the current instruction.
// Only the first signal raised in an instruction is kept.
type pending struct {
	set    bool
	signal arch.Signal
	resume int   // Where execution continues once a handler returns.
	cause  error // Replaces the signal's own error if the run aborts.
}

// outcome describes what delivering a pending signal did.
type outcome int

const (
	outcomeContinue outcome = iota // Nothing pending, or the machine was reset.
	outcomeTrap                    // Control moved to a signal handler.
	outcomeFatal                   // The run was aborted.
)

// raise signals a fault in the current instruction. The instruction is
// retried when a handler returns.
func (c *CPU) raise(sig arch.Signal) {
	c.signal(sig, c.instr.IP, nil)
}

// raiseCause is raise with a more specific error for the abort case.
func (c *CPU) raiseCause(sig arch.Signal, cause error) {
	c.signal(sig, c.instr.IP, cause)
}

func (c *CPU) signal(sig arch.Signal, resume int, cause error) {
	if c.pending.set {
		return
	}
	c.pending = pending{
		set:    true,
		signal: sig,
		resume: resume,
		cause:  cause,
	}
}

// deliver acts on the pending signal, if any.
//
// Handlers are entered like a CALL: the call stack receives resume-1, so
// both RET and RTI continue at the resume address. PC is left one byte
// before the handler to account for the end-of-cycle increment.
func (c *CPU) deliver() (outcome, error) {
	p := c.pending
	if !p.set {
		return outcomeContinue, nil
	}
	c.pending = pending{}

	if p.signal == arch.SIGRESET {
		c.reset()
		c.PC--
		return outcomeContinue, nil
	}

	err := p.cause
	if err == nil {
		err = signalError(p.signal)
	}

	c.PC = uint16(c.instr.IP)
	if p.signal.IsFatal() {
		return outcomeFatal, c.abort(err)
	}

	vector := c.memory.U16(p.signal.Vector())
	if vector == 0 {
		return outcomeFatal, c.abort(errors.Wrapf(err, "unhandled %v", p.signal))
	}

	if !CallStack.Push(c.memory, &c.CallSP, uint16(p.resume-1)) {
		return outcomeFatal, c.abort(errors.Wrapf(ErrStackFault, "entering %v handler", p.signal))
	}

	c.Status |= arch.Interrupt
	c.PC = vector - 1
	return outcomeTrap, nil
}

// abort halts the machine for good. Every later Step returns the error.
func (c *CPU) abort(err error) error {
	c.Status |= arch.Halt
	c.err = &Error{
		IP:     c.instr.IP,
		Status: c.Status,
		Err:    err,
	}
	c.state = Aborted
	log.Println(c.ID(), c.err)
	return c.err
}

// reset puts status, program counter, stack pointers and heap back in
// their initial state. Memory and A, B, X, Y are left alone.
func (c *CPU) reset() {
	c.Status = 0
	c.PC = arch.ProgramStart
	c.SP = arch.DataStackTop
	c.CallSP = arch.CallStackTop
	c.pending = pending{}
	c.heap.Reset()
}

// Interrupt queues a host interrupt. It is delivered as SIGINT before the
// next instruction which does not run inside a signal handler. Returns
// false if the queue is full. Safe for concurrent use.
func (c *CPU) Interrupt() bool {
	select {
	case c.intQueue <- struct{}{}:
		return true
	default:
		return false
	}
}

// checkIntQueue raises SIGINT if a host interrupt is waiting. Handlers
// are not interrupted; the request stays queued until they return.
func (c *CPU) checkIntQueue() bool {
	if c.Status.Has(arch.Interrupt) {
		return false
	}

	select {
	case <-c.intQueue:
		c.instr = Instruction{IP: int(c.PC)}
		c.signal(arch.SIGINT, int(c.PC), nil)
		return true
	default:
		return false
	}
}
