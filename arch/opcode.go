// Package arch defines the system's instruction set along with
// some related helper functions.
package arch

// Known opcodes.
const (
	NOP  = 0x00
	HALT = 0x01

	LOADA  = 0x02
	LOADB  = 0x03
	LOADX  = 0x04
	LOADY  = 0x05
	STOREA = 0x06
	STOREB = 0x07
	STOREX = 0x08
	STOREY = 0x09
	TAB    = 0x0a
	TBA    = 0x0b
	TAX    = 0x0c
	TXA    = 0x0d
	TAY    = 0x0e
	TYA    = 0x0f

	ADDCA  = 0x10
	SUBCA  = 0x11
	MULTUA = 0x12
	MULTSA = 0x13
	DIVA   = 0x14
	DIVSA  = 0x15
	ANDA   = 0x16
	ORA    = 0x17
	XORA   = 0x18
	NOTA   = 0x19

	INCA = 0x1a
	DECA = 0x1b
	INCB = 0x1c
	DECB = 0x1d
	INCX = 0x1e
	DECX = 0x1f
	INCY = 0x20
	DECY = 0x21
	INCM = 0x22
	DECM = 0x23

	SHLA = 0x24
	SHRA = 0x25
	ROLA = 0x26
	RORA = 0x27
	SHL  = 0x28
	SHR  = 0x29
	ROL  = 0x2a
	ROR  = 0x2b

	CMPA = 0x2c
	CMPB = 0x2d
	CMPX = 0x2e
	CMPY = 0x2f

	JMP  = 0x30
	JZ   = 0x31
	JNZ  = 0x32
	JC   = 0x33
	JNC  = 0x34
	CALL = 0x35
	RET  = 0x36
	RTI  = 0x37

	PUSHA = 0x38
	PUSHB = 0x39
	PUSHX = 0x3a
	PUSHY = 0x3b
	POPA  = 0x3c
	POPB  = 0x3d
	POPX  = 0x3e
	POPY  = 0x3f
	PUSH  = 0x40
	PUSHS = 0x41
	POPS  = 0x42
	TSX   = 0x43
	TXS   = 0x44

	CLC = 0x48
	SEC = 0x49
	CLV = 0x4a
	CLF = 0x4b
	SEF = 0x4c

	FADD  = 0x50
	FSUB  = 0x51
	FMULT = 0x52
	FDIV  = 0x53

	SYSCALL = 0x60
	SIG     = 0x61
)

type opinfo struct {
	name    string
	operand bool // Is the opcode followed by an address mode and operand?
}

var opcodes = map[int]opinfo{
	NOP:  {"NOP", false},
	HALT: {"HALT", false},

	LOADA:  {"LOADA", true},
	LOADB:  {"LOADB", true},
	LOADX:  {"LOADX", true},
	LOADY:  {"LOADY", true},
	STOREA: {"STOREA", true},
	STOREB: {"STOREB", true},
	STOREX: {"STOREX", true},
	STOREY: {"STOREY", true},
	TAB:    {"TAB", false},
	TBA:    {"TBA", false},
	TAX:    {"TAX", false},
	TXA:    {"TXA", false},
	TAY:    {"TAY", false},
	TYA:    {"TYA", false},

	ADDCA:  {"ADDCA", true},
	SUBCA:  {"SUBCA", true},
	MULTUA: {"MULTUA", true},
	MULTSA: {"MULTSA", true},
	DIVA:   {"DIVA", true},
	DIVSA:  {"DIVSA", true},
	ANDA:   {"ANDA", true},
	ORA:    {"ORA", true},
	XORA:   {"XORA", true},
	NOTA:   {"NOTA", false},

	INCA: {"INCA", false},
	DECA: {"DECA", false},
	INCB: {"INCB", false},
	DECB: {"DECB", false},
	INCX: {"INCX", false},
	DECX: {"DECX", false},
	INCY: {"INCY", false},
	DECY: {"DECY", false},
	INCM: {"INCM", true},
	DECM: {"DECM", true},

	SHLA: {"SHLA", false},
	SHRA: {"SHRA", false},
	ROLA: {"ROLA", false},
	RORA: {"RORA", false},
	SHL:  {"SHL", true},
	SHR:  {"SHR", true},
	ROL:  {"ROL", true},
	ROR:  {"ROR", true},

	CMPA: {"CMPA", true},
	CMPB: {"CMPB", true},
	CMPX: {"CMPX", true},
	CMPY: {"CMPY", true},

	JMP:  {"JMP", true},
	JZ:   {"JZ", true},
	JNZ:  {"JNZ", true},
	JC:   {"JC", true},
	JNC:  {"JNC", true},
	CALL: {"CALL", true},
	RET:  {"RET", false},
	RTI:  {"RTI", false},

	PUSHA: {"PUSHA", false},
	PUSHB: {"PUSHB", false},
	PUSHX: {"PUSHX", false},
	PUSHY: {"PUSHY", false},
	POPA:  {"POPA", false},
	POPB:  {"POPB", false},
	POPX:  {"POPX", false},
	POPY:  {"POPY", false},
	PUSH:  {"PUSH", true},
	PUSHS: {"PUSHS", false},
	POPS:  {"POPS", false},
	TSX:   {"TSX", false},
	TXS:   {"TXS", false},

	CLC: {"CLC", false},
	SEC: {"SEC", false},
	CLV: {"CLV", false},
	CLF: {"CLF", false},
	SEF: {"SEF", false},

	FADD:  {"FADD", true},
	FSUB:  {"FSUB", true},
	FMULT: {"FMULT", true},
	FDIV:  {"FDIV", true},

	SYSCALL: {"SYSCALL", true},
	SIG:     {"SIG", true},
}

// Name returns the name for the given opcode.
// Returns false if the opcode is not recognized.
func Name(opcode int) (string, bool) {
	info, ok := opcodes[opcode]
	return info.name, ok
}

// HasOperand returns true if the given instruction is followed by an
// address mode byte and its operand.
func HasOperand(opcode int) bool {
	return opcodes[opcode].operand
}

// IsValid returns true if the given opcode is part of the instruction set.
func IsValid(opcode int) bool {
	_, ok := opcodes[opcode]
	return ok
}
