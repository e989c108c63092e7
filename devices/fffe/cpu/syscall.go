package cpu

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/hexaflex/vcpu/arch"
	"github.com/hexaflex/vcpu/devices"
)

// Console is the device behind the text syscalls.
type Console interface {
	devices.Device
	io.Writer

	// ReadLine reads a line of input without its line ending.
	// Returns io.EOF once input is exhausted.
	ReadLine() (string, error)
}

// syscall services the numbered system call.
func (c *CPU) syscall(num uint16) {
	switch num {
	case arch.SysReadLine:
		c.sysReadLine()
	case arch.SysPrint:
		c.sysPrint(func(w *bytes.Buffer, b byte) { w.WriteByte(b) })
	case arch.SysHexDump:
		c.sysPrint(func(w *bytes.Buffer, b byte) { fmt.Fprintf(w, "$%02x\n", b) })

	case arch.SysFree:
		if err := c.heap.Free(int(c.B)); err != nil {
			c.raiseCause(arch.SIGKILL, errors.Wrapf(err, "free %04x", c.B))
		}
	case arch.SysAlloc:
		addr, ok := c.heap.Allocate(int(c.A))
		if !ok {
			c.A, c.B = 0, 0
			return
		}
		c.B = uint16(addr)
	case arch.SysRealloc, arch.SysReallocOrNew:
		r, ok := c.heap.Reallocate(int(c.B), int(c.A), num == arch.SysReallocOrNew)
		if !ok {
			c.A, c.B = 0, 0
			return
		}
		if r.Moved() {
			c.memory.Move(r.Address, r.Previous.Address, r.CopySize())
		}
		c.A, c.B = uint16(r.Size), uint16(r.Address)

	default:
		c.raise(arch.SIGSYS)
	}
}

// sysReadLine reads a line from the console into memory at B, followed
// by a zero byte. A receives the number of bytes written.
func (c *CPU) sysReadLine() {
	if c.console == nil {
		c.raise(arch.SIGSYS)
		return
	}

	line, err := c.console.ReadLine()
	if err != nil && err != io.EOF {
		c.raiseCause(arch.SIGSYS, errors.Wrap(err, "read line"))
		return
	}

	data := []byte(line)
	if len(data) > arch.InputBufferSize-1 {
		data = data[:arch.InputBufferSize-1]
	}
	data = append(data, 0)

	for i, b := range data {
		if !c.writeWord(int(c.B)+i, uint16(b), true) {
			return
		}
	}
	c.A = uint16(len(data))
}

// sysPrint writes A bytes starting at B to the console, formatted by fn.
func (c *CPU) sysPrint(fn func(*bytes.Buffer, byte)) {
	if c.console == nil {
		c.raise(arch.SIGSYS)
		return
	}

	var buf bytes.Buffer
	for i := 0; i < int(c.A); i++ {
		b := c.readWord(int(c.B)+i, true)
		if c.pending.set {
			return
		}
		fn(&buf, byte(b))
	}

	if _, err := c.console.Write(buf.Bytes()); err != nil {
		c.raiseCause(arch.SIGSYS, errors.Wrap(err, "print"))
	}
}
