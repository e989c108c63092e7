// Package image defines the program image type, as well as an encoder
// and decoder for its file format.
//
// An image is a single byte holding the word size the program was built
// for, a big endian 32-bit program length and the program bytes.
package image

import (
	"encoding/hex"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// MaxLength is the largest program length Load accepts from a stream.
// Tighter limits are the loader's business; this only guards allocation.
const MaxLength = 1 << 20

// ErrTruncated is returned when a stream ends inside an image.
var ErrTruncated = errors.New("image: truncated program")

// Image defines a compiled program, ready to be loaded into a machine.
type Image struct {
	WordSize     int    // Word size, in bits, the program was built for.
	Instructions []byte // Compiled code.
}

// New creates a new image for the given word size and code.
func New(wordSize int, code []byte) *Image {
	return &Image{
		WordSize:     wordSize,
		Instructions: code,
	}
}

// Load reads image data from the given stream.
func (a *Image) Load(r io.Reader) (err error) {
	defer recoverOnPanic(&err)

	a.WordSize = int(readU8(r))

	size := readU32(r)
	if size > MaxLength {
		return errors.Errorf("image: program length %d exceeds %d", size, MaxLength)
	}

	a.Instructions = make([]byte, size)
	if _, err := io.ReadFull(r, a.Instructions); err != nil {
		return errors.Wrapf(ErrTruncated, "want %d bytes", size)
	}
	return
}

// Save writes image data to the given stream.
func (a *Image) Save(w io.Writer) (err error) {
	defer recoverOnPanic(&err)

	writeU8(w, uint8(a.WordSize))
	writeU32(w, uint32(len(a.Instructions)))
	_, err = w.Write(a.Instructions)
	check(err)
	return
}

func recoverOnPanic(err *error) {
	x := recover()
	if x == nil {
		return
	}

	switch tx := x.(type) {
	case runtime.Error:
		panic(tx)
	case error:
		if tx == io.EOF || tx == io.ErrUnexpectedEOF {
			tx = ErrTruncated
		}
		*err = errors.Wrapf(tx, "image")
	default:
		*err = fmt.Errorf("image: %v", tx)
	}
}

// String returns a human-readable dump of the image's contents.
func (a *Image) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Word size: %d\n", a.WordSize)
	fmt.Fprintf(&sb, "Length: %d\n", len(a.Instructions))

	if len(a.Instructions) > 0 {
		fmt.Fprintf(&sb, "Instructions:\n")
		fmt.Fprintf(&sb, "%s\n", hex.Dump(a.Instructions))
	}

	return sb.String()
}
