package wire

import "encoding/binary"

// AppendUint16 / AppendUint32 / AppendUint64 append big-endian integers
// in the fixed widths this protocol uses.
func AppendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func AppendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func AppendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

// FillUint16At writes v big-endian at byte offset at of body. PatchLength
// uses it at offset 0 so the length covers the full frame, header
// included.
func FillUint16At(body []byte, at int, v uint16) {
	binary.BigEndian.PutUint16(body[at:], v)
}
