package image

import (
	"encoding/binary"
	"io"
)

func check(err error) {
	if err != nil {
		panic((err))
	}
}

var endian = binary.BigEndian

func readU8(r io.Reader) (v uint8) {
	check(binary.Read(r, endian, &v))
	return
}

func readU32(r io.Reader) (v uint32) {
	check(binary.Read(r, endian, &v))
	return
}

func writeU8(w io.Writer, v uint8) {
	check(binary.Write(w, endian, v))
}

func writeU32(w io.Writer, v uint32) {
	check(binary.Write(w, endian, v))
}
