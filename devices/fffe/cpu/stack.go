package cpu

import "github.com/hexaflex/vcpu/arch"

// Stack describes a downward growing stack of words in [Floor, Top].
//
// The stack pointer addresses the next free byte. It starts at Top and
// reaches Floor-1 when the stack is full. A push stores the low byte at
// the pointer and the high byte below it, so the top word reads big
// endian at pointer+1.
type Stack struct {
	Floor int
	Top   int
}

// Data and call stacks.
var (
	DataStack = Stack{arch.DataStackFloor, arch.DataStackTop}
	CallStack = Stack{arch.CallStackFloor, arch.CallStackTop}
)

// Push stores v and moves *sp down a word. Returns false without
// touching memory or *sp if the stack is full or the slot is outside
// privileged memory.
func (s Stack) Push(m Memory, sp *uint16, v uint16) bool {
	p := int(*sp)
	if p-1 < s.Floor || p > s.Top || !validRange(p-1, arch.WordBytes, ValidPrivileged) {
		return false
	}

	m.SetU8(p, v)
	m.SetU8(p-1, v>>8)
	*sp = uint16(p - 2)
	return true
}

// Pop removes the top word and moves *sp up a word. Returns false without
// touching *sp if the stack is empty.
func (s Stack) Pop(m Memory, sp *uint16) (uint16, bool) {
	p := int(*sp)
	if p+2 > s.Top || p < s.Floor-1 || !validRange(p+1, arch.WordBytes, ValidPrivileged) {
		return 0, false
	}

	*sp = uint16(p + 2)
	return m.U16(p + 1), true
}

// Contains returns true if sp is a legal pointer for this stack.
func (s Stack) Contains(sp int) bool {
	return sp >= s.Floor-1 && sp <= s.Top
}

// push pushes v onto the data stack, raising SIGSTK when it is full.
func (c *CPU) push(v uint16) {
	if !DataStack.Push(c.memory, &c.SP, v) {
		c.raise(arch.SIGSTK)
	}
}

// pop pops the data stack, raising SIGSTK when it is empty.
func (c *CPU) pop() (uint16, bool) {
	v, ok := DataStack.Pop(c.memory, &c.SP)
	if !ok {
		c.raise(arch.SIGSTK)
	}
	return v, ok
}

// call pushes the return address onto the call stack and jumps to target.
func (c *CPU) call(target uint16) {
	if !CallStack.Push(c.memory, &c.CallSP, c.PC) {
		c.raise(arch.SIGSTK)
		return
	}
	c.PC = target - 1
}

// ret pops the call stack into PC.
func (c *CPU) ret() bool {
	pc, ok := CallStack.Pop(c.memory, &c.CallSP)
	if !ok {
		c.raise(arch.SIGSTK)
		return false
	}
	c.PC = pc
	return true
}
