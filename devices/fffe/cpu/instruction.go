package cpu

import (
	"fmt"

	"github.com/hexaflex/vcpu/arch"
)

// Instruction defines decoded instruction data.
type Instruction struct {
	IP         int              // Instruction address.
	Opcode     int              // Instruction opcode.
	Mode       arch.AddressMode // Operand address mode.
	Short      bool             // Does the instruction operate on 8-bit values?
	Operand    uint16           // Raw operand word, if the mode has one.
	HasOperand bool             // Was an address mode decoded?
}

func (i *Instruction) String() string {
	name, ok := arch.Name(i.Opcode)
	if !ok {
		name = fmt.Sprintf("%02x", i.Opcode)
	}

	if !i.HasOperand {
		return fmt.Sprintf("%04x %s", i.IP, name)
	}

	if i.Short {
		name += ".S"
	}

	var arg string
	switch i.Mode {
	case arch.Immediate:
		arg = fmt.Sprintf("#$%04x", i.Operand)
	case arch.Absolute:
		arg = fmt.Sprintf("$%04x", i.Operand)
	case arch.RegisterB:
		arg = "B"
	case arch.XIndexed:
		arg = fmt.Sprintf("$%04x,X", i.Operand)
	case arch.YIndexed:
		arg = fmt.Sprintf("$%04x,Y", i.Operand)
	case arch.IndirectIndexedX:
		arg = fmt.Sprintf("($%04x),X", i.Operand)
	case arch.IndirectIndexedY:
		arg = fmt.Sprintf("($%04x),Y", i.Operand)
	case arch.IndexedIndirectX:
		arg = fmt.Sprintf("($%04x,X)", i.Operand)
	case arch.IndexedIndirectY:
		arg = fmt.Sprintf("($%04x,Y)", i.Operand)
	}

	return fmt.Sprintf("%04x %s %s", i.IP, name, arg)
}

// decode reads the next opcode and, if it takes one, its address mode
// and operand. Returns false if decoding raised a signal.
func (c *CPU) decode() bool {
	instr := &c.instr
	*instr = Instruction{IP: int(c.PC)}

	op, ok := c.fetch(instr.IP)
	if !ok {
		return false
	}

	instr.Opcode = int(op)
	if !arch.IsValid(instr.Opcode) {
		c.raise(arch.SIGILL)
		return false
	}

	if !arch.HasOperand(instr.Opcode) {
		return true
	}

	b, ok := c.next8()
	if !ok {
		return false
	}

	mode, short, ok := arch.DecodeMode(byte(b))
	if !ok {
		c.raise(arch.SIGILL)
		return false
	}

	instr.Mode = mode
	instr.Short = short
	instr.HasOperand = true

	if mode.HasOperand() {
		instr.Operand, ok = c.next16()
		if !ok {
			return false
		}
	}

	return true
}

// address resolves the effective address of the current memory operand.
// Must not be called for immediate or register-b operands.
func (c *CPU) address() int {
	instr := &c.instr
	addr := int(instr.Operand)

	switch instr.Mode {
	case arch.XIndexed:
		return addr + int(c.X)
	case arch.YIndexed:
		return addr + int(c.Y)
	case arch.IndirectIndexedX:
		return int(c.readWord(addr, false)) + int(c.X)
	case arch.IndirectIndexedY:
		return int(c.readWord(addr, false)) + int(c.Y)
	case arch.IndexedIndirectX:
		return int(c.readWord(addr+int(c.X), false))
	case arch.IndexedIndirectY:
		return int(c.readWord(addr+int(c.Y), false))
	}

	return addr
}

// load returns the value of the current operand.
func (c *CPU) load() uint16 {
	instr := &c.instr

	switch instr.Mode {
	case arch.Immediate:
		if instr.Short {
			return instr.Operand & 0xff
		}
		return instr.Operand
	case arch.RegisterB:
		if instr.Short {
			return c.B & 0xff
		}
		return c.B
	}

	return c.readWord(c.address(), instr.Short)
}

// store writes value to the current operand. Immediate operands are not
// writable and raise SIGILL.
func (c *CPU) store(value uint16) {
	instr := &c.instr

	switch instr.Mode {
	case arch.Immediate:
		c.raise(arch.SIGILL)
	case arch.RegisterB:
		if instr.Short {
			c.B = c.B&0xff00 | value&0xff
		} else {
			c.B = value
		}
	default:
		if addr := c.address(); !c.pending.set {
			c.writeWord(addr, value, instr.Short)
		}
	}
}

// modify replaces the current operand with fn applied to it. The
// effective address is resolved once.
func (c *CPU) modify(fn func(uint16) uint16) {
	instr := &c.instr

	switch instr.Mode {
	case arch.Immediate:
		c.raise(arch.SIGILL)
		return
	case arch.RegisterB:
		c.store(fn(c.load()))
		return
	}

	addr := c.address()
	if c.pending.set {
		return
	}
	if !validRange(addr, width(instr.Short), Valid) {
		c.raise(arch.SIGSEGV)
		return
	}

	c.writeWord(addr, fn(c.readWord(addr, instr.Short)), instr.Short)
}

// loadSingle returns the 32-bit floating point operand of the current
// instruction. Immediates supply the high word. Register and short
// operands can not hold 32 bits and raise SIGILL.
func (c *CPU) loadSingle() (uint32, bool) {
	instr := &c.instr

	if instr.Short || instr.Mode == arch.RegisterB {
		c.raise(arch.SIGILL)
		return 0, false
	}

	if instr.Mode == arch.Immediate {
		return uint32(instr.Operand) << 16, true
	}

	addr := c.address()
	hi := c.readWord(addr, false)
	lo := c.readWord(addr+arch.WordBytes, false)
	return uint32(hi)<<16 | uint32(lo), true
}
