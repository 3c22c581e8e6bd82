// Package spvcheck reads and verifies SPIR-V module headers.
//
// A SPIR-V module starts with a five-word header:
//
//	word 0: magic number 0x07230203
//	word 1: version (0x00MMmm00)
//	word 2: generator magic
//	word 3: id bound
//	word 4: schema (reserved, 0)
//
// Modules may be stored in either byte order; the magic number decides
// which one applies to the rest of the stream.
package spvcheck

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// MagicNumber is the first word of every SPIR-V module.
const MagicNumber = 0x07230203

// HeaderSize is the size of the module header in bytes.
const HeaderSize = 20

var (
	// ErrShort is returned when the input ends before the header does.
	ErrShort = errors.New("spirv: module shorter than header")

	// ErrMagic is returned when the first word is not the SPIR-V magic.
	ErrMagic = errors.New("spirv: bad magic number")
)

// Header is a decoded SPIR-V module header.
type Header struct {
	Major, Minor uint8
	Generator    uint32
	Bound        uint32
	Schema       uint32

	// Order is the byte order the module was written in.
	Order binary.ByteOrder
}

// Version returns the version as "major.minor".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

// ParseHeader decodes the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrShort
	}
	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(data) == MagicNumber:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data) == MagicNumber:
		order = binary.BigEndian
	default:
		return Header{}, fmt.Errorf("%w: 0x%08X", ErrMagic, binary.LittleEndian.Uint32(data))
	}
	version := order.Uint32(data[4:])
	return Header{
		Major:     uint8(version >> 16),
		Minor:     uint8(version >> 8),
		Generator: order.Uint32(data[8:]),
		Bound:     order.Uint32(data[12:]),
		Schema:    order.Uint32(data[16:]),
		Order:     order,
	}, nil
}

// ReadHeader reads and decodes a header from r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrShort
		}
		return Header{}, err
	}
	return ParseHeader(buf)
}

// VerifyFile checks that the file at path starts with a SPIR-V header.
func VerifyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := ReadHeader(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
