package lsgen

import (
	"fmt"
	"iter"
	"slices"
)

// RegisterRange is the contiguous inclusive register list First..Last.
type RegisterRange struct {
	First, Last Register
}

// Len returns the number of registers in the range.
func (r RegisterRange) Len() int {
	return int(r.Last) - int(r.First) + 1
}

// Registers returns First..Last in ascending order.
func (r RegisterRange) Registers() []Register {
	ret := make([]Register, 0, r.Len())
	for reg := r.First; reg <= r.Last; reg++ {
		ret = append(ret, reg)
	}
	return ret
}

// Mask returns the register list bitmask for the range.
func (r RegisterRange) Mask() RegisterMask {
	return rangeMask(uint(r.Last), uint(r.First))
}

// String renders the range as an assembler register list.
func (r RegisterRange) String() string {
	if r.First == r.Last {
		return fmt.Sprintf("{%s}", r.First)
	}
	return fmt.Sprintf("{%s-%s}", r.First, r.Last)
}

// MaxListRegister is the highest register used in generated register
// lists. r12 and above are reserved for the base and stack pointers.
const MaxListRegister Register = 11

// RegisterRangeGenerator enumerates every contiguous register range whose
// registers are all at most Highest.
type RegisterRangeGenerator struct {
	Highest Register
}

// DefaultRegisterRanges covers r0..r11.
var DefaultRegisterRanges = RegisterRangeGenerator{Highest: MaxListRegister}

// Count returns the number of ranges the generator produces.
func (g RegisterRangeGenerator) Count() int {
	n := int(g.Highest) + 1
	return n * (n + 1) / 2
}

// Ranges returns all ranges ordered by First, then Last.
func (g RegisterRangeGenerator) Ranges() []RegisterRange {
	ret := make([]RegisterRange, 0, g.Count())
	for rng := range g.Seq() {
		ret = append(ret, rng)
	}
	return ret
}

// Seq yields each range with its register sequence. For a fixed first
// register the sequence is extended in place, so consecutive yields share
// a backing array; each yielded slice is clipped and never changes after
// it has been yielded. The sequence may be ranged over any number of times.
func (g RegisterRangeGenerator) Seq() iter.Seq2[RegisterRange, []Register] {
	return func(yield func(RegisterRange, []Register) bool) {
		for first := Register(0); first <= g.Highest; first++ {
			regs := make([]Register, 0, int(g.Highest-first)+1)
			for last := first; last <= g.Highest; last++ {
				regs = append(regs, last)
				if !yield(RegisterRange{First: first, Last: last}, slices.Clip(regs)) {
					return
				}
			}
		}
	}
}

