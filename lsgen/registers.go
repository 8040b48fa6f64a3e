package lsgen

import (
	"fmt"
)

// Register is an ARM core register number.
type Register uint8

const (
	SP Register = 13
	LR Register = 14
	PC Register = 15
)

func (r Register) String() string {
	switch r {
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	default:
		return fmt.Sprintf("r%d", uint8(r))
	}
}
