// Package systemarea holds the 16-sector (32 KiB) system area that precedes
// the Volume Descriptor Set. ECMA-119 reserves its contents for other
// standards (e.g. a bootable El Torito record lives partly outside it, in the
// Boot Record Volume Descriptor); this library treats it as an opaque blob.
package systemarea

import (
	"fmt"

	"github.com/rstms/isokit/pkg/consts"
)

// Size is the fixed byte length of the system area.
const Size = consts.SystemAreaSectors * consts.DefaultSectorSize

// SystemArea is the raw, opaque system area payload.
type SystemArea [Size]byte

// Read copies a system area out of a contiguous byte slice.
func Read(data []byte) (SystemArea, error) {
	var sa SystemArea
	if len(data) < Size {
		return sa, fmt.Errorf("system area: input too short (%d bytes, need %d)", len(data), Size)
	}
	copy(sa[:], data[:Size])
	return sa, nil
}
