// Package instruction builds the ecom program instructions.
//
// Instruction data is a single tag byte selecting the operation, followed by the
// fixed-layout record payload for update operations.
package instruction

import (
	"errors"
	"fmt"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/record"
)

// Tag selects the ecom program operation.
type Tag uint8

const (
	UpdateAddress     Tag = 0
	InitializeAddress Tag = 1
	InitializeProfile Tag = 2
	UpdateProfile     Tag = 3
)

// ErrInvalidInstruction is returned for unknown tags or malformed payloads.
var ErrInvalidInstruction = errors.New("instruction: invalid instruction data")

func (t Tag) String() string {
	switch t {
	case UpdateAddress:
		return "update_address"
	case InitializeAddress:
		return "initialize_address"
	case InitializeProfile:
		return "initialize_profile"
	case UpdateProfile:
		return "update_profile"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// PayloadSize is the number of bytes expected after the tag.
func (t Tag) PayloadSize() int {
	switch t {
	case UpdateAddress:
		return record.AddressSize
	case UpdateProfile:
		return record.ProfileSize
	default:
		return 0
	}
}

// ParseTag maps the leading instruction byte to a Tag.
func ParseTag(b byte) (Tag, error) {
	t := Tag(b)
	switch t {
	case UpdateAddress, InitializeAddress, InitializeProfile, UpdateProfile:
		return t, nil
	}
	return 0, fmt.Errorf("%w: tag %d", ErrInvalidInstruction, b)
}

// Decode splits instruction data into its tag and payload, checking the payload length.
func Decode(data []byte) (Tag, []byte, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("%w: empty data", ErrInvalidInstruction)
	}
	tag, err := ParseTag(data[0])
	if err != nil {
		return 0, nil, err
	}
	payload := data[1:]
	if len(payload) != tag.PayloadSize() {
		return 0, nil, fmt.Errorf("%w: %s payload is %d bytes, want %d", ErrInvalidInstruction, tag, len(payload), tag.PayloadSize())
	}
	return tag, payload, nil
}

func encode(tag Tag, payload []byte) []byte {
	data := make([]byte, 0, 1+len(payload))
	data = append(data, byte(tag))
	return append(data, payload...)
}
