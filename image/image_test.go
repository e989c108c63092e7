package image

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestImage(t *testing.T) {
	a := New(16, []byte{0x02, 0x00, 0x00, 0x05, 0x01})

	var buf bytes.Buffer
	if err := a.Save(&buf); err != nil {
		t.Fatal(err)
	}

	want := []byte{16, 0, 0, 0, 5, 0x02, 0x00, 0x00, 0x05, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoding mismatch:\nhave: % x\nwant: % x", buf.Bytes(), want)
	}

	b := &Image{}
	if err := b.Load(&buf); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("image mismatch:\nhave: %v\nwant: %v", b, a)
	}
}

func TestImageTruncated(t *testing.T) {
	tests := [][]byte{
		{},
		{16, 0, 0},
		{16, 0, 0, 0, 4, 1, 2},
	}

	for _, data := range tests {
		var img Image
		err := img.Load(bytes.NewReader(data))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("load % x: want ErrTruncated; have %v", data, err)
		}
	}
}

func TestImageTooLong(t *testing.T) {
	var img Image
	err := img.Load(bytes.NewReader([]byte{16, 0xff, 0xff, 0xff, 0xff}))
	if err == nil {
		t.Fatal("expected error for oversized length")
	}
}
