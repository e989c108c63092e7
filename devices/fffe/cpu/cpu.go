// Package cpu implements the VCPU processor: a 16-bit machine with a
// 64KiB address space, integer and floating point units, a heap, data and
// call stacks and vectored signals.
package cpu

import (
	"io"
	"log"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/arch"
	"github.com/hexaflex/vcpu/devices"
	"github.com/hexaflex/vcpu/heap"
	"github.com/hexaflex/vcpu/image"
)

// TraceFunc represents a callback handler for debug trace output.
// It is called after every executed instruction.
type TraceFunc func(*Instruction, Registers)

// State describes the run state of the processor.
type State int

// Known states.
const (
	Stopped State = iota // Not started.
	Running
	Halted  // Executed HALT.
	Aborted // Stopped by an unrecoverable fault.
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Aborted:
		return "aborted"
	}
	return "stopped"
}

// CPU implements the runtime.
type CPU struct {
	Registers

	devices     devices.Map     // Connected peripherals.
	console     Console         // Device serving the text syscalls.
	trace       TraceFunc       // Handler for debug trace output.
	memory      Memory          // System memory.
	program     []byte          // Program image, copied to ProgramStart on startup.
	heap        *heap.Allocator // Heap region bookkeeping.
	alu         ALU
	fpu         FPU
	instr       Instruction   // Decoded instruction data.
	pending     pending       // Signal raised by the current instruction.
	intQueue    chan struct{} // Host interrupt queue.
	state       State
	err         error  // Error which aborted the run.
	initialized uint32 // Is there a valid program loaded?
}

// New creates a new CPU for the given program image.
// Optionally with the given debug trace handler.
func New(img *image.Image, trace TraceFunc) (*CPU, error) {
	if img.WordSize != arch.WordSize {
		return nil, errors.Wrapf(ErrWordSize, "image has %d bits; want %d", img.WordSize, arch.WordSize)
	}
	if len(img.Instructions) == 0 {
		return nil, ErrEmptyProgram
	}
	if len(img.Instructions) > arch.ProgramCapacity {
		return nil, errors.Wrapf(ErrProgramTooLarge, "%d bytes; at most %d fit", len(img.Instructions), arch.ProgramCapacity)
	}

	if trace == nil {
		trace = func(*Instruction, Registers) { /* nop */ }
	}

	c := &CPU{
		trace:    trace,
		memory:   make(Memory, arch.MemoryCapacity),
		program:  append([]byte(nil), img.Instructions...),
		heap:     heap.New(arch.HeapFloor, arch.HeapCeiling),
		intQueue: make(chan struct{}, IntQueueCapacity),
	}
	c.alu = ALU{&c.Registers}
	c.fpu = FPU{&c.Registers}
	return c, nil
}

// ID returns the cpu's device Id.
func (c *CPU) ID() devices.ID {
	return devices.CPUID
}

// Memory returns the cpu's internal memory bank.
func (c *CPU) Memory() Memory {
	return c.memory
}

// Heap returns the heap allocator.
func (c *CPU) Heap() *heap.Allocator {
	return c.heap
}

// State returns the current run state.
func (c *CPU) State() State {
	return c.state
}

// Err returns the error which aborted the run, if any.
func (c *CPU) Err() error {
	return c.err
}

// Connect connects the given hardware peripheral to the system.
// Returns false if the given device type is already connected.
// The first connected Console serves the text syscalls.
func (c *CPU) Connect(dev devices.Device) bool {
	if !c.devices.Connect(dev) {
		return false
	}
	if con, ok := dev.(Console); ok && c.console == nil {
		c.console = con
	}
	return true
}

// Startup loads the program and initializes the cpu and connected
// peripherals. Returns an error if a program is already loaded.
// Use Shutdown() first.
func (c *CPU) Startup() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 0, 1) {
		return errors.Errorf("%s program is already loaded", c.ID())
	}

	log.Println(c.ID(), "startup")
	for i := range c.memory {
		c.memory[i] = 0
	}
	c.memory.Write(arch.ProgramStart, c.program)

	c.Registers = Registers{}
	c.reset()
	c.err = nil
	c.state = Running

	return c.devices.Startup()
}

// Shutdown cleans up internal resources.
func (c *CPU) Shutdown() error {
	if !atomic.CompareAndSwapUint32(&c.initialized, 1, 0) {
		return nil
	}
	log.Println(c.ID(), "shutdown")
	if c.state == Running {
		c.state = Stopped
	}
	return c.devices.Shutdown()
}

// Reset puts the processor back at the start of the program with empty
// stacks and heap. Memory and the general purpose registers are kept.
// An aborted run becomes runnable again.
func (c *CPU) Reset() {
	c.reset()
	c.err = nil
	if atomic.LoadUint32(&c.initialized) == 1 {
		c.state = Running
	}
}

// Step performs a single execution step.
// Returns io.EOF if the program has halted or no program is loaded.
// Once a fault aborts the run, the same *Error is returned on every call.
func (c *CPU) Step() error {
	if atomic.LoadUint32(&c.initialized) == 0 {
		return io.EOF
	}

	switch c.state {
	case Halted:
		return io.EOF
	case Aborted:
		return c.err
	}

	if !c.checkIntQueue() && c.decode() {
		c.execute()
	}

	out, err := c.deliver()
	if out == outcomeFatal {
		c.trace(&c.instr, c.Registers)
		return err
	}

	c.PC++
	c.trace(&c.instr, c.Registers)

	if out == outcomeContinue && c.Status.Has(arch.Halt) {
		c.state = Halted
		return io.EOF
	}
	return nil
}

// execute runs the decoded instruction.
func (c *CPU) execute() {
	instr := &c.instr
	alu := c.alu

	switch instr.Opcode {
	case arch.NOP:
		/* nop */
	case arch.HALT:
		c.Status |= arch.Halt

	case arch.LOADA:
		c.A = c.loadFlags()
	case arch.LOADB:
		c.B = c.loadFlags()
	case arch.LOADX:
		c.X = c.loadFlags()
	case arch.LOADY:
		c.Y = c.loadFlags()
	case arch.STOREA:
		c.store(c.A)
	case arch.STOREB:
		c.store(c.B)
	case arch.STOREX:
		c.store(c.X)
	case arch.STOREY:
		c.store(c.Y)

	case arch.TAB:
		c.B = c.A
	case arch.TBA:
		c.A = c.B
	case arch.TAX:
		c.X = c.A
	case arch.TXA:
		c.A = c.X
	case arch.TAY:
		c.Y = c.A
	case arch.TYA:
		c.A = c.Y

	case arch.ADDCA:
		alu.Add(c.load())
	case arch.SUBCA:
		alu.Sub(c.load())
	case arch.MULTUA:
		alu.MultUnsigned(c.load())
	case arch.MULTSA:
		alu.MultSigned(c.load())
	case arch.DIVA, arch.DIVSA:
		v := c.load()
		if c.pending.set {
			return
		}
		if v == 0 {
			c.raise(arch.SIGFPE)
			return
		}
		if instr.Opcode == arch.DIVA {
			alu.DivUnsigned(v)
		} else {
			alu.DivSigned(v)
		}
	case arch.ANDA:
		alu.Logic(And, c.load())
	case arch.ORA:
		alu.Logic(Or, c.load())
	case arch.XORA:
		alu.Logic(Xor, c.load())
	case arch.NOTA:
		alu.Logic(Not, 0)

	case arch.INCA:
		c.A = alu.Step(c.A, 1, false)
	case arch.DECA:
		c.A = alu.Step(c.A, -1, false)
	case arch.INCB:
		c.B = alu.Step(c.B, 1, false)
	case arch.DECB:
		c.B = alu.Step(c.B, -1, false)
	case arch.INCX:
		c.X = alu.Step(c.X, 1, false)
	case arch.DECX:
		c.X = alu.Step(c.X, -1, false)
	case arch.INCY:
		c.Y = alu.Step(c.Y, 1, false)
	case arch.DECY:
		c.Y = alu.Step(c.Y, -1, false)
	case arch.INCM:
		c.modify(func(v uint16) uint16 { return alu.Step(v, 1, instr.Short) })
	case arch.DECM:
		c.modify(func(v uint16) uint16 { return alu.Step(v, -1, instr.Short) })

	case arch.SHLA, arch.SHRA, arch.ROLA, arch.RORA:
		c.A = alu.Shift(instr.Opcode-arch.SHLA, c.A, false)
	case arch.SHL, arch.SHR, arch.ROL, arch.ROR:
		c.modify(func(v uint16) uint16 { return alu.Shift(instr.Opcode-arch.SHL, v, instr.Short) })

	case arch.CMPA:
		alu.Compare(c.A, c.load())
	case arch.CMPB:
		alu.Compare(c.B, c.load())
	case arch.CMPX:
		alu.Compare(c.X, c.load())
	case arch.CMPY:
		alu.Compare(c.Y, c.load())

	case arch.JMP:
		c.jump(true)
	case arch.JZ:
		c.jump(c.Status.Has(arch.Zero))
	case arch.JNZ:
		c.jump(!c.Status.Has(arch.Zero))
	case arch.JC:
		c.jump(c.Status.Has(arch.Carry))
	case arch.JNC:
		c.jump(!c.Status.Has(arch.Carry))
	case arch.CALL:
		target := c.load()
		if !c.pending.set {
			c.call(target)
		}
	case arch.RET:
		c.ret()
	case arch.RTI:
		if c.ret() {
			c.Status &^= arch.Interrupt
		}

	case arch.PUSHA:
		c.push(c.A)
	case arch.PUSHB:
		c.push(c.B)
	case arch.PUSHX:
		c.push(c.X)
	case arch.PUSHY:
		c.push(c.Y)
	case arch.POPA:
		if v, ok := c.pop(); ok {
			c.A = v
		}
	case arch.POPB:
		if v, ok := c.pop(); ok {
			c.B = v
		}
	case arch.POPX:
		if v, ok := c.pop(); ok {
			c.X = v
		}
	case arch.POPY:
		if v, ok := c.pop(); ok {
			c.Y = v
		}
	case arch.PUSH:
		v := c.load()
		if !c.pending.set {
			c.push(v)
		}
	case arch.PUSHS:
		c.push(uint16(c.Status))
	case arch.POPS:
		if v, ok := c.pop(); ok {
			c.Status = arch.Status(v)&^arch.Halt | c.Status&arch.Halt
		}
	case arch.TSX:
		c.X = c.SP
	case arch.TXS:
		if !DataStack.Contains(int(c.X)) {
			c.raise(arch.SIGSTK)
			return
		}
		c.SP = c.X

	case arch.CLC:
		c.Status &^= arch.Carry
	case arch.SEC:
		c.Status |= arch.Carry
	case arch.CLV:
		c.Status &^= arch.Overflow
	case arch.CLF:
		c.Status &^= arch.FloatingPoint
	case arch.SEF:
		c.Status |= arch.FloatingPoint

	case arch.FADD, arch.FSUB, arch.FMULT, arch.FDIV:
		c.float(instr.Opcode - arch.FADD)

	case arch.SYSCALL:
		num := c.load()
		if !c.pending.set {
			c.syscall(num)
		}
	case arch.SIG:
		sig := c.load()
		if c.pending.set {
			return
		}
		if sig >= arch.VectorCount {
			c.raise(arch.SIGILL)
			return
		}
		c.signal(arch.Signal(sig), int(c.PC)+1, nil)
	}
}

// loadFlags loads the current operand and sets Z and N from it.
func (c *CPU) loadFlags() uint16 {
	v := c.load()
	msb := uint16(0x8000)
	if c.instr.Short {
		msb = 0x80
	}

	c.Status &^= arch.Zero | arch.Negative
	c.Status.Set(arch.Zero, v == 0)
	c.Status.Set(arch.Negative, v&msb != 0)
	return v
}

// jump moves PC to the operand if cond holds. The operand bytes were
// consumed by decode either way.
func (c *CPU) jump(cond bool) {
	if !cond {
		return
	}
	target := c.load()
	if !c.pending.set {
		c.PC = target - 1
	}
}

// float runs a floating point operation in the mode selected by F.
// Division by either zero raises SIGFPE.
func (c *CPU) float(op int) {
	if c.Status.Has(arch.FloatingPoint) {
		right, ok := c.loadSingle()
		if !ok || c.pending.set {
			return
		}
		if op == FDiv && isZeroSingle(right) {
			c.raise(arch.SIGFPE)
			return
		}
		c.fpu.Single(op, right)
		return
	}

	right := c.load()
	if c.pending.set {
		return
	}
	if op == FDiv && isZeroHalf(right) {
		c.raise(arch.SIGFPE)
		return
	}
	c.fpu.Half(op, right)
}
