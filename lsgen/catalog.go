package lsgen

import (
	"fmt"
	"strings"
)

// Width is the number of bits moved by a single load or store.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Bytes returns the transfer size in bytes.
func (w Width) Bytes() int {
	return int(w) / 8
}

func (w Width) valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	default:
		return false
	}
}

// ExtraClass selects the access variant of a load/store beyond its width.
type ExtraClass uint8

const (
	ExtraNone         ExtraClass = iota
	ExtraUnprivileged            // user-mode permission checks (the "t" forms)
	ExtraExclusive               // exclusive monitor access (the "ex" forms)

	numExtraClasses
)

func (c ExtraClass) String() string {
	switch c {
	case ExtraNone:
		return "none"
	case ExtraUnprivileged:
		return "unprivileged"
	case ExtraExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("ExtraClass(%d)", uint8(c))
	}
}

// ParseExtraClass is the inverse of ExtraClass.String. It returns false
// for any name that is not a known class.
func ParseExtraClass(s string) (ExtraClass, bool) {
	for c := ExtraNone; c < numExtraClasses; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

func (c ExtraClass) MarshalText() ([]byte, error) {
	if c >= numExtraClasses {
		return nil, fmt.Errorf("unknown extra class %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// LoadStoreDescriptor describes one core load/store instruction.
type LoadStoreDescriptor struct {
	Mnemonic string
	Store    bool
	Width    Width
	Extra    ExtraClass
	Signed   bool
}

func (d LoadStoreDescriptor) String() string {
	return d.Mnemonic
}

// Dual reports whether the instruction transfers a register pair.
func (d LoadStoreDescriptor) Dual() bool {
	return d.Width == Width64
}

const instructionCatalogSource = "instruction catalog"

func (d LoadStoreDescriptor) validate() error {
	if err := checkMnemonic(instructionCatalogSource, d.Mnemonic); err != nil {
		return err
	}
	if !d.Width.valid() {
		return configErrorf(instructionCatalogSource, d.Mnemonic, "unsupported transfer width %d", d.Width)
	}
	if d.Extra >= numExtraClasses {
		return configErrorf(instructionCatalogSource, d.Mnemonic, "unknown extra class %d", uint8(d.Extra))
	}
	if d.Signed && d.Store {
		return configErrorf(instructionCatalogSource, d.Mnemonic, "stores cannot be sign-extending")
	}
	if d.Signed && d.Width >= Width32 {
		return configErrorf(instructionCatalogSource, d.Mnemonic, "sign extension needs a transfer narrower than 32 bits, not %d", d.Width)
	}
	return nil
}

func checkMnemonic(source, mnem string) error {
	if mnem == "" {
		return configErrorf(source, "", "descriptor has no mnemonic")
	}
	for _, r := range mnem {
		if r < 'a' || r > 'z' {
			return configErrorf(source, mnem, "mnemonic must be lowercase letters only")
		}
	}
	return nil
}

// coreLoadStores is the canonical table of core load/store instructions.
//
//	Mnemonic   Store   Width    Extra              Signed
var coreLoadStores = []LoadStoreDescriptor{
	{"ldr", false, Width32, ExtraNone, false},
	{"str", true, Width32, ExtraNone, false},
	{"ldrt", false, Width32, ExtraUnprivileged, false},
	{"strt", true, Width32, ExtraUnprivileged, false},
	{"ldrex", false, Width32, ExtraExclusive, false},
	{"strex", true, Width32, ExtraExclusive, false},
	{"strh", true, Width16, ExtraNone, false},
	{"strht", true, Width16, ExtraUnprivileged, false},
	{"strexh", true, Width16, ExtraExclusive, false},
	{"ldrh", false, Width16, ExtraNone, false},
	{"ldrht", false, Width16, ExtraUnprivileged, false},
	{"ldrexh", false, Width16, ExtraExclusive, false},
	{"ldrsh", false, Width16, ExtraNone, true},
	{"ldrsht", false, Width16, ExtraUnprivileged, true},
	{"strb", true, Width8, ExtraNone, false},
	{"strbt", true, Width8, ExtraUnprivileged, false},
	{"strexb", true, Width8, ExtraExclusive, false},
	{"ldrb", false, Width8, ExtraNone, false},
	{"ldrbt", false, Width8, ExtraUnprivileged, false},
	{"ldrexb", false, Width8, ExtraExclusive, false},
	{"ldrsb", false, Width8, ExtraNone, true},
	{"ldrsbt", false, Width8, ExtraUnprivileged, true},
	{"ldrd", false, Width64, ExtraNone, false},
	{"strd", true, Width64, ExtraNone, false},
	{"ldrexd", false, Width64, ExtraExclusive, false},
	{"strexd", true, Width64, ExtraExclusive, false},
}

// InstructionCatalog is a validated, read-only table of load/store
// descriptors. The order of the source table is preserved.
type InstructionCatalog struct {
	descs  []LoadStoreDescriptor
	byName map[string]int
}

// NewInstructionCatalog validates descs and builds a catalog from them.
// The returned error is always a *ConfigurationError.
func NewInstructionCatalog(descs []LoadStoreDescriptor) (*InstructionCatalog, error) {
	if len(descs) == 0 {
		return nil, configErrorf(instructionCatalogSource, "", "no descriptors")
	}
	ret := &InstructionCatalog{
		descs:  make([]LoadStoreDescriptor, len(descs)),
		byName: make(map[string]int, len(descs)),
	}
	copy(ret.descs, descs)
	for i, d := range ret.descs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, exists := ret.byName[d.Mnemonic]; exists {
			return nil, configErrorf(instructionCatalogSource, d.Mnemonic, "duplicate mnemonic")
		}
		ret.byName[d.Mnemonic] = i
	}
	return ret, nil
}

// DefaultInstructionCatalog returns the catalog of every core load/store
// the generator knows about.
func DefaultInstructionCatalog() (*InstructionCatalog, error) {
	return NewInstructionCatalog(coreLoadStores)
}

// Descriptors returns a copy of the catalog's descriptors in table order.
func (c *InstructionCatalog) Descriptors() []LoadStoreDescriptor {
	ret := make([]LoadStoreDescriptor, len(c.descs))
	copy(ret, c.descs)
	return ret
}

// Lookup finds the descriptor with the given mnemonic.
func (c *InstructionCatalog) Lookup(mnem string) (LoadStoreDescriptor, bool) {
	i, ok := c.byName[strings.ToLower(mnem)]
	if !ok {
		return LoadStoreDescriptor{}, false
	}
	return c.descs[i], true
}

// Len returns the number of descriptors.
func (c *InstructionCatalog) Len() int {
	return len(c.descs)
}
