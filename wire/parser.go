// Package wire implements the Z-protocol wire codec: the fixed 6-byte
// header plus the typed message bodies, encoded and decoded as packed
// big-endian bytes with no padding.
//
// Each read-side helper takes the full body and a cursor offset, returns
// the advanced cursor plus the decoded value, and a static error on
// short input. The write-side helpers in writer.go append big-endian
// fields and patch a length field after the fact.
package wire

import (
	"encoding/binary"
	"errors"
)

var ErrBodyTooShort = errors.New("wire: message body too short")
var ErrBodyExcessBytes = errors.New("wire: message body has excess bytes")

// ParserReadFinish reports whether the cursor consumed exactly the body.
func ParserReadFinish(body []byte, offset int) error {
	if offset != len(body) {
		return ErrBodyExcessBytes
	}
	return nil
}

func ParserReadByte(body []byte, offset int) (int, byte, error) {
	if len(body) < offset+1 {
		return offset, 0, ErrBodyTooShort
	}
	return offset + 1, body[offset], nil
}

func ParserReadUint16(body []byte, offset int) (int, uint16, error) {
	if len(body) < offset+2 {
		return offset, 0, ErrBodyTooShort
	}
	return offset + 2, binary.BigEndian.Uint16(body[offset:]), nil
}

func ParserReadUint32(body []byte, offset int) (int, uint32, error) {
	if len(body) < offset+4 {
		return offset, 0, ErrBodyTooShort
	}
	return offset + 4, binary.BigEndian.Uint32(body[offset:]), nil
}

func ParserReadUint64(body []byte, offset int) (int, uint64, error) {
	if len(body) < offset+8 {
		return offset, 0, ErrBodyTooShort
	}
	return offset + 8, binary.BigEndian.Uint64(body[offset:]), nil
}

// ParserReadFixedBytes copies len(dst) bytes from body[offset:] into dst.
func ParserReadFixedBytes(body []byte, offset int, dst []byte) (int, error) {
	if len(body) < offset+len(dst) {
		return offset, ErrBodyTooShort
	}
	copy(dst, body[offset:])
	return offset + len(dst), nil
}

// ParserReadN returns the next n bytes of body as a sub-slice (no
// copy); callers that retain it beyond the current frame must copy it
// themselves.
func ParserReadN(body []byte, offset, n int) (int, []byte, error) {
	if len(body) < offset+n {
		return offset, nil, ErrBodyTooShort
	}
	return offset + n, body[offset : offset+n], nil
}
