// Package record encodes the fixed-layout account records kept by the address and profile programs.
//
// Both layouts are borsh structs made of fixed byte arrays and little-endian u32 values, so every
// encoded record has a constant size regardless of the text it carries.
package record

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const (
	// AddressSize is the byte budget of an address record.
	AddressSize = 512
	// NameSize is the byte budget of the profile name field.
	NameSize = 64
	// ProfileSize is the encoded size of a profile record: name plus date, month and year.
	ProfileSize = NameSize + 3*4
)

var (
	// ErrFieldTooLong is returned when text does not fit into its fixed field.
	ErrFieldTooLong = errors.New("record: field exceeds byte budget")
	// ErrShortData is returned when account data is smaller than the record layout.
	ErrShortData = errors.New("record: data shorter than record layout")
)

// packText left-packs s into dst and zero-pads the rest.
func packText(dst []byte, s, field string) error {
	if len(s) > len(dst) {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFieldTooLong, field, len(s), len(dst))
	}
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func unpackText(src []byte) string {
	return string(bytes.TrimRight(src, "\x00"))
}

func encode(v interface{}, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("borsh encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}, size int) error {
	if len(data) < size {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrShortData, len(data), size)
	}
	if err := bin.NewBorshDecoder(data[:size]).Decode(v); err != nil {
		return fmt.Errorf("borsh decode: %w", err)
	}
	return nil
}
