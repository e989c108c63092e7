package arch

// Known syscall numbers.
const (
	SysReadLine     = 0x13 // Read a line into [B]; A = bytes written.
	SysPrint        = 0x14 // Write A bytes from [B].
	SysHexDump      = 0x15 // Write A bytes from [B] as $xx tokens.
	SysFree         = 0x20 // Free the heap block at B.
	SysAlloc        = 0x21 // Allocate A bytes; B = address.
	SysRealloc      = 0x22 // Resize block B to A bytes.
	SysReallocOrNew = 0x23 // Resize block B to A bytes, allocating if B is unknown.
)
