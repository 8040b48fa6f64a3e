package lsgen

import (
	"fmt"
	"math/bits"
)

// AddressingKind is the shape of the offset operand of a load or store.
type AddressingKind uint8

const (
	Immediate AddressingKind = iota
	RegisterOffset
	ScaledRegisterOffset
)

func (k AddressingKind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case RegisterOffset:
		return "register"
	case ScaledRegisterOffset:
		return "scaled-register"
	default:
		return fmt.Sprintf("AddressingKind(%d)", uint8(k))
	}
}

func (k AddressingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ShiftOp is a barrel shifter operation applied to a scaled index register.
type ShiftOp uint8

const (
	LSL ShiftOp = iota
	LSR
	ASR
	ROR
)

func (op ShiftOp) String() string {
	switch op {
	case LSL:
		return "LSL"
	case LSR:
		return "LSR"
	case ASR:
		return "ASR"
	case ROR:
		return "ROR"
	default:
		return fmt.Sprintf("ShiftOp(%d)", uint8(op))
	}
}

// Apply shifts a 32-bit register value the way the barrel shifter does for
// an immediate shift amount in 1..31.
func (op ShiftOp) Apply(value uint32, amount uint) uint32 {
	switch op {
	case LSL:
		return value << amount
	case LSR:
		return value >> amount
	case ASR:
		return uint32(int32(value) >> amount)
	case ROR:
		return bits.RotateLeft32(value, -int(amount))
	default:
		panic(fmt.Sprintf("unknown shift operator %d", uint8(op)))
	}
}

// IndexRegister is an offset register that the harness preloads with a
// known value before each case.
type IndexRegister struct {
	Reg   Register
	Value uint32
}

// AddressingSpec is one offset operand together with the byte offset into
// the reference buffer that it resolves to.
type AddressingSpec struct {
	Kind    AddressingKind
	Operand string

	// Offset is the resolved byte offset into the reference buffer, i.e.
	// the base register's initial offset plus Displacement.
	Offset int

	// AnchoredAtEnd is set when the base register must point at the last
	// byte of the buffer instead of the first, so that negative
	// displacements stay in bounds.
	AnchoredAtEnd bool

	// Displacement is the signed value added to the base register.
	Displacement int

	Index  Register // RegisterOffset and ScaledRegisterOffset only
	Shift  ShiftOp  // ScaledRegisterOffset only
	Amount uint     // ScaledRegisterOffset only
}

// Magnitude is the absolute displacement; for immediates this is the value
// that has to fit the instruction's immediate field.
func (s AddressingSpec) Magnitude() int {
	if s.Displacement < 0 {
		return -s.Displacement
	}
	return s.Displacement
}

// AddressingConfig holds the fixed parameters the addressing modes are
// derived from.
type AddressingConfig struct {
	BufferSize   int
	Immediates   []int
	Index        []IndexRegister
	ScaledIndex  Register
	Shifts       []ShiftOp
	ShiftAmounts []uint

	// MaxWidth is the widest transfer the buffer has to accommodate at the
	// largest immediate offset.
	MaxWidth Width
}

// DefaultAddressingConfig straddles the 4-, 8- and 12-bit unsigned immediate
// field boundaries and uses index registers whose values keep every
// effective address predictable.
var DefaultAddressingConfig = AddressingConfig{
	BufferSize:   8192,
	Immediates:   []int{0, 13, 16, 124, 255, 1020, 4095},
	Index:        []IndexRegister{{Reg: 8, Value: 8}, {Reg: 11, Value: 16}},
	ScaledIndex:  11,
	Shifts:       []ShiftOp{LSL, LSR, ASR, ROR},
	ShiftAmounts: []uint{2, 3},
	MaxWidth:     Width64,
}

// AddressingModeSet is the ordered list of offset operands to try against
// a base register: immediates, end-anchored negative immediates, index
// registers, then scaled index registers.
type AddressingModeSet struct {
	bufferSize int
	index      []IndexRegister
	specs      []AddressingSpec
}

const addressingSource = "addressing modes"

// NewAddressingModeSet validates cfg and enumerates its addressing specs.
// The returned error is always a *ConfigurationError.
func NewAddressingModeSet(cfg AddressingConfig) (*AddressingModeSet, error) {
	if !cfg.MaxWidth.valid() {
		return nil, configErrorf(addressingSource, "", "unsupported maximum transfer width %d", cfg.MaxWidth)
	}

	maxImm := 0
	seen := make(map[int]struct{}, len(cfg.Immediates))
	for _, imm := range cfg.Immediates {
		if imm < 0 {
			return nil, configErrorf(addressingSource, fmt.Sprintf("#%d", imm), "immediates must be given as magnitudes")
		}
		if _, dup := seen[imm]; dup {
			return nil, configErrorf(addressingSource, fmt.Sprintf("#%d", imm), "duplicate immediate")
		}
		seen[imm] = struct{}{}
		if imm > maxImm {
			maxImm = imm
		}
	}

	// The buffer must be able to hold the widest transfer at the largest
	// offset from either end.
	if need := maxImm + cfg.MaxWidth.Bytes(); cfg.BufferSize < need {
		return nil, configErrorf(addressingSource, "buffer size", "%d bytes cannot host a %d-bit access at offset %d (need at least %d)", cfg.BufferSize, cfg.MaxWidth, maxImm, need)
	}

	indexValues := make(map[Register]uint32, len(cfg.Index))
	for _, ir := range cfg.Index {
		if ir.Reg >= SP {
			return nil, configErrorf(addressingSource, ir.Reg.String(), "index register must be a general purpose register")
		}
		if _, dup := indexValues[ir.Reg]; dup {
			return nil, configErrorf(addressingSource, ir.Reg.String(), "duplicate index register")
		}
		if int64(ir.Value)+int64(cfg.MaxWidth.Bytes()) > int64(cfg.BufferSize) {
			return nil, configErrorf(addressingSource, ir.Reg.String(), "preloaded value %d is outside the buffer", ir.Value)
		}
		indexValues[ir.Reg] = ir.Value
	}

	scaledValue, ok := indexValues[cfg.ScaledIndex]
	if len(cfg.Shifts) > 0 && !ok {
		return nil, configErrorf(addressingSource, cfg.ScaledIndex.String(), "scaled index register is not one of the index registers")
	}
	for _, op := range cfg.Shifts {
		if op > ROR {
			return nil, configErrorf(addressingSource, op.String(), "unknown shift operator")
		}
	}
	for _, amount := range cfg.ShiftAmounts {
		if amount < 1 || amount > 31 {
			return nil, configErrorf(addressingSource, fmt.Sprintf("#%d", amount), "shift amount must be in 1..31")
		}
	}

	ret := &AddressingModeSet{
		bufferSize: cfg.BufferSize,
		index:      append([]IndexRegister(nil), cfg.Index...),
	}

	for _, imm := range cfg.Immediates {
		ret.specs = append(ret.specs, AddressingSpec{
			Kind:         Immediate,
			Operand:      fmt.Sprintf("#%d", imm),
			Offset:       imm,
			Displacement: imm,
		})
	}
	end := ret.BaseOffset(true)
	for _, imm := range cfg.Immediates {
		ret.specs = append(ret.specs, AddressingSpec{
			Kind:          Immediate,
			Operand:       fmt.Sprintf("#-%d", imm),
			Offset:        end - imm,
			AnchoredAtEnd: true,
			Displacement:  -imm,
		})
	}
	for _, ir := range cfg.Index {
		ret.specs = append(ret.specs, AddressingSpec{
			Kind:         RegisterOffset,
			Operand:      ir.Reg.String(),
			Offset:       int(ir.Value),
			Displacement: int(ir.Value),
			Index:        ir.Reg,
		})
	}
	for _, op := range cfg.Shifts {
		for _, amount := range cfg.ShiftAmounts {
			v := int(op.Apply(scaledValue, amount))
			if v+cfg.MaxWidth.Bytes() > cfg.BufferSize {
				return nil, configErrorf(addressingSource, fmt.Sprintf("%s, %s #%d", cfg.ScaledIndex, op, amount), "resolves to offset %d outside the buffer", v)
			}
			ret.specs = append(ret.specs, AddressingSpec{
				Kind:         ScaledRegisterOffset,
				Operand:      fmt.Sprintf("%s, %s #%d", cfg.ScaledIndex, op, amount),
				Offset:       v,
				Displacement: v,
				Index:        cfg.ScaledIndex,
				Shift:        op,
				Amount:       amount,
			})
		}
	}

	return ret, nil
}

// DefaultAddressingModeSet builds the mode set from DefaultAddressingConfig.
func DefaultAddressingModeSet() (*AddressingModeSet, error) {
	return NewAddressingModeSet(DefaultAddressingConfig)
}

// Specs returns a copy of the addressing specs in generation order.
func (s *AddressingModeSet) Specs() []AddressingSpec {
	ret := make([]AddressingSpec, len(s.specs))
	copy(ret, s.specs)
	return ret
}

// Len returns the number of addressing specs.
func (s *AddressingModeSet) Len() int {
	return len(s.specs)
}

// BufferSize is the size of the reference data buffer in bytes.
func (s *AddressingModeSet) BufferSize() int {
	return s.bufferSize
}

// IndexRegisters returns the registers the harness must preload, with
// their values.
func (s *AddressingModeSet) IndexRegisters() []IndexRegister {
	return append([]IndexRegister(nil), s.index...)
}

// BaseOffset is the offset of the base register's initial value into the
// buffer: the first byte, or the last byte for end-anchored specs.
func (s *AddressingModeSet) BaseOffset(anchoredAtEnd bool) int {
	if anchoredAtEnd {
		return s.bufferSize - 1
	}
	return 0
}
