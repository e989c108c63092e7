package arch

// WordSize is the natural integer size of the machine in bits.
// Program images must carry the same value.
const WordSize = 16

// WordBytes is the number of bytes in a word.
const WordBytes = WordSize / 8

// Memory layout. Ranges are inclusive of the first address and
// exclusive of the end address.
const (
	MemoryCapacity = 0x10000

	NullAddress = 0x0000 // Null guard word, never a valid pointer.

	VectorTable = 0x0002                              // Signal vector table.
	VectorCount = 8                                   // One vector per signal.
	VectorEnd   = VectorTable + VectorCount*WordBytes // End of the vector table.

	DataStackFloor = 0x0100 // Lowest address the data stack may use.
	DataStackTop   = 0x0fff // Initial SP.

	CallStackFloor = 0x1000 // Lowest address the call stack may use.
	CallStackTop   = 0x11ff // Initial CALL_SP.

	HeapFloor   = 0x1200 // First heap address.
	HeapCeiling = 0x8000 // End of the heap.

	ProgramStart    = 0x8000                        // Load address of the program image.
	ProgramCapacity = MemoryCapacity - ProgramStart // Largest program image.
)

// InputBufferSize is the largest number of bytes, terminator included,
// a single read-line syscall stores.
const InputBufferSize = 256
