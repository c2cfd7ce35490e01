package wire

import "github.com/uestchp/zclient/zerrors"

// HeaderSize is the framed size of the fixed header: a two-byte total
// length, a one-byte marker, a one-byte version, and a two-byte command.
// The length field's value is the *entire* framed size, these six header
// bytes included.
const HeaderSize = 6

// Marker is the constant header byte right after length, used to detect
// protocol-version skew at the first message.
const Marker = 0xFF

// Version is the only wire version this client speaks.
const Version = 2

// Header is the 6-byte frame header, decoded big-endian.
type Header struct {
	Length  uint16
	Marker  byte
	Version byte
	Command Command
}

// EncodeHeaderPrefix writes the header's non-length fields into a fresh
// 6-byte frame prefix; the caller patches Length in afterward with
// PatchLength once the body size is known (the length field covers the
// whole frame, body included).
func EncodeHeaderPrefix(cmd Command) []byte {
	b := make([]byte, 0, HeaderSize)
	b = AppendUint16(b, 0) // length patched later
	b = append(b, Marker, Version)
	b = AppendUint16(b, uint16(cmd))
	return b
}

// PatchLength writes the final frame length (header included) into the
// first two bytes of frame.
func PatchLength(frame []byte) {
	FillUint16At(frame, 0, uint16(len(frame)))
}

// DecodeHeader parses and validates the 6-byte header at the front of
// buf. Validation failures are connection-fatal: the stream can no
// longer be trusted to be frame-aligned.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, zerrors.ErrFrameTooShort
	}
	_, length, _ := ParserReadUint16(buf, 0)
	marker := buf[2]
	version := buf[3]
	_, cmd, _ := ParserReadUint16(buf, 4)
	h := Header{Length: length, Marker: marker, Version: version, Command: Command(cmd)}
	if marker != Marker {
		return h, zerrors.ErrBadMarker
	}
	if version != Version {
		return h, zerrors.ErrBadVersion
	}
	if length < HeaderSize {
		return h, zerrors.ErrFrameTooShort
	}
	return h, nil
}
