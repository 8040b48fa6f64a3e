package lsgen

import (
	"fmt"
)

// RegisterMask is the 16-bit register list field of a block transfer
// instruction, with bit n set when register n is transferred.
type RegisterMask uint16

func (m RegisterMask) String() string {
	return fmt.Sprintf("0b%016b", uint16(m))
}

// Has reports whether register r is in the list.
func (m RegisterMask) Has(r Register) bool {
	return m&(1<<r) != 0
}

func rangeMask(top, bottom uint) RegisterMask {
	return RegisterMask((1 << (top + 1)) - (1 << bottom))
}
