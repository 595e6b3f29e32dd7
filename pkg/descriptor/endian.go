package descriptor

import "encoding/binary"

// Path table location fields are single-endian (one copy in each of the two
// path tables), unlike the both-endian fields used elsewhere in the
// descriptor.

func leUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func beUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

func putLE32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func putBE32(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }
