// Package console implements the text console behind the read-line and
// print syscalls.
package console

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/hexaflex/vcpu/devices"
)

// Device is a line oriented console.
//
// When the input is an interactive terminal, lines are read with the
// terminal in raw mode so the user gets line editing. Otherwise input is
// read through a buffered reader.
type Device struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
	term   *term.Terminal
	fd     int
}

// New creates a console reading from in and writing to out.
func New(in io.Reader, out io.Writer) *Device {
	return &Device{
		in:  in,
		out: out,
		fd:  -1,
	}
}

// IsInteractive returns true if r is a terminal.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.ConsoleID
}

// Startup prepares the input side of the console.
func (d *Device) Startup() error {
	d.reader = bufio.NewReader(d.in)
	d.term = nil
	d.fd = -1

	if IsInteractive(d.in) {
		d.fd = int(d.in.(*os.File).Fd())
		d.term = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{d.in, d.out}, "")
	}
	return nil
}

// Shutdown releases the input side of the console.
func (d *Device) Shutdown() error {
	d.reader = nil
	d.term = nil
	return nil
}

// ReadLine reads one line of input, without its line ending.
// Returns io.EOF when the input is exhausted and nothing was read.
func (d *Device) ReadLine() (string, error) {
	if d.term != nil {
		return d.readTerminal()
	}

	if d.reader == nil {
		return "", errors.New("console: not started")
	}

	line, err := d.reader.ReadString('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readTerminal reads a line with the terminal in raw mode.
func (d *Device) readTerminal() (string, error) {
	state, err := term.MakeRaw(d.fd)
	if err != nil {
		return "", errors.Wrap(err, "console")
	}
	defer term.Restore(d.fd, state)
	return d.term.ReadLine()
}

// Write writes p to the console output.
func (d *Device) Write(p []byte) (int, error) {
	if d.term != nil {
		return d.term.Write(p)
	}
	return d.out.Write(p)
}
