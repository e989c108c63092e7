package cpu

import "github.com/hexaflex/vcpu/arch"

// Memory defines the system's memory bank.
//
// Its accessors are unchecked; guest accesses go through the CPU, which
// validates addresses first.
type Memory []byte

// SetU8 sets the 8-bit value at the given address.
func (m Memory) SetU8(addr int, value uint16) {
	m[addr] = byte(value)
}

// U8 returns the 8-bit value at the given address.
func (m Memory) U8(addr int) uint16 {
	return uint16(m[addr])
}

// SetU16 sets the big endian 16-bit value at the given address.
func (m Memory) SetU16(addr int, value uint16) {
	m[addr] = byte(value >> 8)
	m[addr+1] = byte(value)
}

// U16 returns the big endian 16-bit value at the given address.
func (m Memory) U16(addr int) uint16 {
	return uint16(m[addr])<<8 | uint16(m[addr+1])
}

// Write writes len(p) bytes from p into memory, starting at the given address.
func (m Memory) Write(address int, p []byte) {
	copy(m[address:], p)
}

// Read reads len(p) bytes from memory into p, starting at the given address.
func (m Memory) Read(address int, p []byte) {
	copy(p, m[address:])
}

// Move copies n bytes from src to dst. The ranges may overlap.
func (m Memory) Move(dst, src, n int) {
	copy(m[dst:dst+n], m[src:src+n])
}

// Valid returns true if guest instructions may access addr: it must lie
// in memory and outside the null guard, the call stack and the program.
func Valid(addr int) bool {
	switch {
	case addr < 0 || addr >= arch.MemoryCapacity:
		return false
	case addr < arch.VectorTable:
		return false
	case addr >= arch.CallStackFloor && addr <= arch.CallStackTop:
		return false
	case addr >= arch.ProgramStart:
		return false
	}
	return true
}

// ValidPrivileged returns true if the CPU itself may access addr.
// Only the null guard is off limits.
func ValidPrivileged(addr int) bool {
	return addr >= arch.VectorTable && addr < arch.MemoryCapacity
}

// validRange returns true if all n bytes starting at addr pass the given check.
func validRange(addr, n int, valid func(int) bool) bool {
	for i := 0; i < n; i++ {
		if !valid(addr + i) {
			return false
		}
	}
	return true
}

// width returns the number of bytes an access of the given size touches.
func width(short bool) int {
	if short {
		return 1
	}
	return arch.WordBytes
}

// readWord reads a word, or a single byte if short, from a guest address.
// Invalid addresses raise SIGSEGV and read as all ones.
func (c *CPU) readWord(addr int, short bool) uint16 {
	if !validRange(addr, width(short), Valid) {
		c.raise(arch.SIGSEGV)
		if short {
			return 0xff
		}
		return 0xffff
	}

	if short {
		return c.memory.U8(addr)
	}
	return c.memory.U16(addr)
}

// writeWord writes a word, or its low byte if short, to a guest address.
// Invalid addresses raise SIGSEGV and nothing is written.
func (c *CPU) writeWord(addr int, value uint16, short bool) bool {
	if !validRange(addr, width(short), Valid) {
		c.raise(arch.SIGSEGV)
		return false
	}

	if short {
		c.memory.SetU8(addr, value)
	} else {
		c.memory.SetU16(addr, value)
	}
	return true
}

// fetch reads a byte of code at addr. Code is only ever fetched from the
// program region.
func (c *CPU) fetch(addr int) (uint16, bool) {
	if addr < arch.ProgramStart || addr >= arch.MemoryCapacity {
		c.raise(arch.SIGSEGV)
		return 0xff, false
	}
	return c.memory.U8(addr), true
}

// next8 advances PC and reads the code byte it lands on.
func (c *CPU) next8() (uint16, bool) {
	c.PC++
	return c.fetch(int(c.PC))
}

// next16 advances PC twice and reads the big endian word it passed over.
func (c *CPU) next16() (uint16, bool) {
	hi, ok := c.next8()
	if !ok {
		return 0xffff, false
	}
	lo, ok := c.next8()
	if !ok {
		return 0xffff, false
	}
	return hi<<8 | lo, true
}
