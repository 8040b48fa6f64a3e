package lsgen

import (
	"fmt"
	"strings"
)

// Form is the addressing form, which decides whether and when the base
// register is written back.
type Form uint8

const (
	FormOffset      Form = iota // [Rn, off]
	FormPreIndexed              // [Rn, off]!
	FormPostIndexed             // [Rn], off
)

func (f Form) String() string {
	switch f {
	case FormOffset:
		return "offset"
	case FormPreIndexed:
		return "pre-indexed"
	case FormPostIndexed:
		return "post-indexed"
	default:
		return fmt.Sprintf("Form(%d)", uint8(f))
	}
}

func (f Form) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// GeneratedCase is one instruction variant together with everything a
// harness needs to check it mechanically.
type GeneratedCase struct {
	Text        string
	Instruction LoadStoreDescriptor
	Dst         Register
	Base        Register
	Addressing  AddressingSpec
	Form        Form

	// Offset is the addressing spec's resolved offset.
	Offset int

	// BaseOffset is where the base register points before the access.
	BaseOffset int

	// AccessOffset is where the bytes are transferred. Post-indexed
	// accesses use the unmodified base.
	AccessOffset int

	// WritebackOffset is where the base register points afterwards.
	WritebackOffset int

	Width  Width
	Signed bool
	Store  bool
}

// OperandCombinator crosses load/store descriptors with registers,
// addressing specs and addressing forms.
type OperandCombinator struct {
	Dsts   []Register
	Bases  []Register
	Status Register // result register of the exclusive stores
	Modes  *AddressingModeSet
}

const combinatorSource = "operand combinator"

// NewOperandCombinator returns a combinator using destinations r0 and r6,
// bases r2 and r5 and status register r12 over modes.
func NewOperandCombinator(modes *AddressingModeSet) (*OperandCombinator, error) {
	c := &OperandCombinator{
		Dsts:   []Register{0, 6},
		Bases:  []Register{2, 5},
		Status: 12,
		Modes:  modes,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks that no two roles share a register. Doubleword
// transfers also occupy the register after each destination.
func (c *OperandCombinator) validate() error {
	if c.Modes == nil {
		return configErrorf(combinatorSource, "", "no addressing modes")
	}
	if len(c.Dsts) == 0 || len(c.Bases) == 0 {
		return configErrorf(combinatorSource, "", "need at least one destination and one base register")
	}
	used := make(map[Register]string)
	claim := func(r Register, role string) error {
		if r >= SP {
			return configErrorf(combinatorSource, r.String(), "%s must be a general purpose register", role)
		}
		if prev, ok := used[r]; ok {
			return configErrorf(combinatorSource, r.String(), "used as both %s and %s", prev, role)
		}
		used[r] = role
		return nil
	}
	for _, r := range c.Dsts {
		if r%2 != 0 {
			return configErrorf(combinatorSource, r.String(), "destination must be even to start a doubleword pair")
		}
		if err := claim(r, "destination"); err != nil {
			return err
		}
		if err := claim(r+1, "doubleword partner"); err != nil {
			return err
		}
	}
	for _, r := range c.Bases {
		if err := claim(r, "base"); err != nil {
			return err
		}
	}
	for _, ir := range c.Modes.index {
		if err := claim(ir.Reg, "index"); err != nil {
			return err
		}
	}
	return claim(c.Status, "exclusive status")
}

// Check reports whether the combination is one the architecture permits
// and whose access stays inside the reference buffer. Any failure is an
// *InvalidCombinationError.
func (c *OperandCombinator) Check(d LoadStoreDescriptor, spec AddressingSpec, form Form) error {
	if reason := checkEncoding(d, spec, form); reason != "" {
		return &InvalidCombinationError{Mnemonic: d.Mnemonic, Form: form, Operand: spec.Operand, Reason: reason}
	}
	base, access, _ := c.offsets(spec, form)
	if access < 0 || access+d.Width.Bytes() > c.Modes.bufferSize {
		return &InvalidCombinationError{
			Mnemonic: d.Mnemonic,
			Form:     form,
			Operand:  spec.Operand,
			Reason:   fmt.Sprintf("%d-byte access at offset %d from base offset %d leaves the buffer", d.Width.Bytes(), access, base),
		}
	}
	return nil
}

func (c *OperandCombinator) offsets(spec AddressingSpec, form Form) (base, access, writeback int) {
	base = c.Modes.BaseOffset(spec.AnchoredAtEnd)
	switch form {
	case FormPreIndexed:
		return base, spec.Offset, spec.Offset
	case FormPostIndexed:
		return base, base, spec.Offset
	default:
		return base, spec.Offset, base
	}
}

// ValidSpecs returns the addressing specs that d accepts in every one of
// its legal forms, in generation order.
func (c *OperandCombinator) ValidSpecs(d LoadStoreDescriptor) []AddressingSpec {
	forms := LegalForms(d)
	var ret []AddressingSpec
specs:
	for _, spec := range c.Modes.specs {
		for _, form := range forms {
			if c.Check(d, spec, form) != nil {
				continue specs
			}
		}
		ret = append(ret, spec)
	}
	return ret
}

// Cases returns every variant of d: destination outermost, then base, then
// addressing spec, then form.
func (c *OperandCombinator) Cases(d LoadStoreDescriptor) []GeneratedCase {
	specs := c.ValidSpecs(d)
	forms := LegalForms(d)
	ret := make([]GeneratedCase, 0, len(c.Dsts)*len(c.Bases)*len(specs)*len(forms))
	c.each(d, specs, forms, func(gc GeneratedCase) bool {
		ret = append(ret, gc)
		return true
	})
	return ret
}

func (c *OperandCombinator) each(d LoadStoreDescriptor, specs []AddressingSpec, forms []Form, yield func(GeneratedCase) bool) bool {
	for _, dst := range c.Dsts {
		for _, base := range c.Bases {
			for _, spec := range specs {
				for _, form := range forms {
					if !yield(c.build(d, dst, base, spec, form)) {
						return false
					}
				}
			}
		}
	}
	return true
}

func (c *OperandCombinator) build(d LoadStoreDescriptor, dst, base Register, spec AddressingSpec, form Form) GeneratedCase {
	baseOff, access, wb := c.offsets(spec, form)
	return GeneratedCase{
		Text:            c.render(d, dst, base, spec, form),
		Instruction:     d,
		Dst:             dst,
		Base:            base,
		Addressing:      spec,
		Form:            form,
		Offset:          spec.Offset,
		BaseOffset:      baseOff,
		AccessOffset:    access,
		WritebackOffset: wb,
		Width:           d.Width,
		Signed:          d.Signed,
		Store:           d.Store,
	}
}

func (c *OperandCombinator) render(d LoadStoreDescriptor, dst, base Register, spec AddressingSpec, form Form) string {
	var b strings.Builder
	b.WriteString(d.Mnemonic)
	b.WriteByte(' ')
	if d.Extra == ExtraExclusive && d.Store {
		fmt.Fprintf(&b, "%s, ", c.Status)
	}
	b.WriteString(dst.String())
	if d.Dual() {
		fmt.Fprintf(&b, ", %s", dst+1)
	}

	if d.Extra == ExtraExclusive {
		fmt.Fprintf(&b, ", [%s]", base)
		return b.String()
	}

	switch form {
	case FormPreIndexed:
		fmt.Fprintf(&b, ", [%s, %s]!", base, spec.Operand)
	case FormPostIndexed:
		fmt.Fprintf(&b, ", [%s], %s", base, spec.Operand)
	default:
		fmt.Fprintf(&b, ", [%s, %s]", base, spec.Operand)
	}
	return b.String()
}
