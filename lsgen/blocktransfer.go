package lsgen

import (
	"fmt"
	"strings"
)

// BlockMode is the address sequence of a block transfer.
type BlockMode uint8

const (
	IncrementAfter BlockMode = iota
	IncrementBefore
	DecrementAfter
	DecrementBefore
)

func (m BlockMode) String() string {
	switch m {
	case IncrementAfter:
		return "ia"
	case IncrementBefore:
		return "ib"
	case DecrementAfter:
		return "da"
	case DecrementBefore:
		return "db"
	default:
		return fmt.Sprintf("BlockMode(%d)", uint8(m))
	}
}

func (m BlockMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Increments reports whether the transfer walks upwards from the base.
func (m BlockMode) Increments() bool {
	return m == IncrementAfter || m == IncrementBefore
}

// BlockTransferDescriptor describes one multi-register transfer.
type BlockTransferDescriptor struct {
	Mnemonic string
	Store    bool
	ARMOnly  bool // no Thumb encoding
	Stack    bool // implicit sp base with writeback (push/pop)
}

func (d BlockTransferDescriptor) String() string {
	return d.Mnemonic
}

// Mode returns the address sequence named by the mnemonic. push and pop
// are aliases for stmdb sp! and ldmia sp!.
func (d BlockTransferDescriptor) Mode() (BlockMode, error) {
	switch d.Mnemonic {
	case "push":
		return DecrementBefore, nil
	case "pop":
		return IncrementAfter, nil
	}
	if len(d.Mnemonic) != 5 {
		return 0, configErrorf(blockCatalogSource, d.Mnemonic, "not a block transfer mnemonic")
	}
	for m := IncrementAfter; m <= DecrementBefore; m++ {
		if d.Mnemonic[3:] == m.String() {
			return m, nil
		}
	}
	return 0, configErrorf(blockCatalogSource, d.Mnemonic, "unknown address mode suffix %q", d.Mnemonic[3:])
}

const blockCatalogSource = "block transfer catalog"

func (d BlockTransferDescriptor) validate() error {
	if err := checkMnemonic(blockCatalogSource, d.Mnemonic); err != nil {
		return err
	}
	mode, err := d.Mode()
	if err != nil {
		return err
	}
	if d.Stack {
		switch {
		case d.Mnemonic == "push" && d.Store && mode == DecrementBefore:
		case d.Mnemonic == "pop" && !d.Store && mode == IncrementAfter:
		default:
			return configErrorf(blockCatalogSource, d.Mnemonic, "only push and pop are stack forms")
		}
		return nil
	}
	switch {
	case d.Mnemonic == "push" || d.Mnemonic == "pop":
		return configErrorf(blockCatalogSource, d.Mnemonic, "must be marked as a stack form")
	case strings.HasPrefix(d.Mnemonic, "ldm") && d.Store:
		return configErrorf(blockCatalogSource, d.Mnemonic, "load multiple marked as a store")
	case strings.HasPrefix(d.Mnemonic, "stm") && !d.Store:
		return configErrorf(blockCatalogSource, d.Mnemonic, "store multiple marked as a load")
	case !strings.HasPrefix(d.Mnemonic, "ldm") && !strings.HasPrefix(d.Mnemonic, "stm"):
		return configErrorf(blockCatalogSource, d.Mnemonic, "not a load or store multiple")
	}
	return nil
}

// blockTransfers is the canonical table of multi-register transfers.
//
//	Mnemonic  Store  ARMOnly  Stack
var blockTransfers = []BlockTransferDescriptor{
	{"ldmia", false, false, false},
	{"ldmda", false, true, false},
	{"ldmdb", false, false, false},
	{"ldmib", false, true, false},
	{"pop", false, false, true},
	{"push", true, false, true},
	{"stmia", true, false, false},
	{"stmda", true, true, false},
	{"stmdb", true, false, false},
	{"stmib", true, true, false},
}

// BlockTransferCatalog is a validated, read-only table of block transfer
// descriptors.
type BlockTransferCatalog struct {
	descs []BlockTransferDescriptor
}

// NewBlockTransferCatalog validates descs and builds a catalog from them.
// The returned error is always a *ConfigurationError.
func NewBlockTransferCatalog(descs []BlockTransferDescriptor) (*BlockTransferCatalog, error) {
	if len(descs) == 0 {
		return nil, configErrorf(blockCatalogSource, "", "no descriptors")
	}
	seen := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.Mnemonic]; dup {
			return nil, configErrorf(blockCatalogSource, d.Mnemonic, "duplicate mnemonic")
		}
		seen[d.Mnemonic] = struct{}{}
	}
	return &BlockTransferCatalog{
		descs: append([]BlockTransferDescriptor(nil), descs...),
	}, nil
}

// DefaultBlockTransferCatalog returns the catalog of every block transfer
// the generator knows about.
func DefaultBlockTransferCatalog() (*BlockTransferCatalog, error) {
	return NewBlockTransferCatalog(blockTransfers)
}

// Descriptors returns a copy of the catalog's descriptors in table order.
func (c *BlockTransferCatalog) Descriptors() []BlockTransferDescriptor {
	return append([]BlockTransferDescriptor(nil), c.descs...)
}

// Lookup finds the descriptor with the given mnemonic.
func (c *BlockTransferCatalog) Lookup(mnem string) (BlockTransferDescriptor, bool) {
	mnem = strings.ToLower(mnem)
	for _, d := range c.descs {
		if d.Mnemonic == mnem {
			return d, true
		}
	}
	return BlockTransferDescriptor{}, false
}

// BlockCase is one block transfer variant and the buffer offsets of every
// word it moves.
type BlockCase struct {
	Text        string
	Instruction BlockTransferDescriptor
	Base        Register
	Range       RegisterRange
	Writeback   bool

	BaseOffset      int
	Offsets         []int // one per register in Range, ascending
	WritebackOffset int   // equal to BaseOffset without writeback
	Mask            RegisterMask
}

// BlockCombinator crosses block transfer descriptors with register ranges.
type BlockCombinator struct {
	Base       Register
	BufferSize int
	Ranges     RegisterRangeGenerator
}

const blockCombinatorSource = "block combinator"

// NewBlockCombinator returns a combinator with base r12 over the default
// register ranges.
func NewBlockCombinator(bufferSize int) (*BlockCombinator, error) {
	c := &BlockCombinator{
		Base:       12,
		BufferSize: bufferSize,
		Ranges:     DefaultRegisterRanges,
	}
	if c.Ranges.Highest >= c.Base {
		return nil, configErrorf(blockCombinatorSource, c.Base.String(), "base register overlaps the register lists")
	}
	// Increment-before skips the word at the base, so the longest list
	// needs one spare word.
	if need := 4 * (int(c.Ranges.Highest) + 2); bufferSize < need {
		return nil, configErrorf(blockCombinatorSource, "buffer size", "%d bytes cannot hold %d words", bufferSize, need/4)
	}
	return c, nil
}

// baseOffset anchors the base so that the whole list lands in the buffer:
// increasing transfers start at the front, decreasing ones at the back.
func (c *BlockCombinator) baseOffset(mode BlockMode) int {
	switch {
	case mode.Increments():
		return 0
	case mode == DecrementBefore:
		return c.BufferSize
	default:
		return c.BufferSize - 4
	}
}

func blockOffsets(mode BlockMode, base, n int) (offsets []int, writeback int) {
	var start int
	switch mode {
	case IncrementAfter:
		start, writeback = base, base+4*n
	case IncrementBefore:
		start, writeback = base+4, base+4*n
	case DecrementAfter:
		start, writeback = base-4*n+4, base-4*n
	case DecrementBefore:
		start, writeback = base-4*n, base-4*n
	}
	offsets = make([]int, n)
	for i := range offsets {
		offsets[i] = start + 4*i
	}
	return offsets, writeback
}

// Cases returns every variant of d: for each register range, the form
// without writeback and then with it. Stack forms always write back.
func (c *BlockCombinator) Cases(d BlockTransferDescriptor) ([]BlockCase, error) {
	mode, err := d.Mode()
	if err != nil {
		return nil, err
	}
	var ret []BlockCase
	for rng := range c.Ranges.Seq() {
		if d.Stack {
			ret = append(ret, c.build(d, mode, rng, true))
			continue
		}
		ret = append(ret, c.build(d, mode, rng, false), c.build(d, mode, rng, true))
	}
	return ret, nil
}

func (c *BlockCombinator) build(d BlockTransferDescriptor, mode BlockMode, rng RegisterRange, writeback bool) BlockCase {
	base := c.baseOffset(mode)
	offsets, wb := blockOffsets(mode, base, rng.Len())
	if !writeback {
		wb = base
	}

	var text string
	switch {
	case d.Stack:
		text = fmt.Sprintf("%s %s", d.Mnemonic, rng)
	case writeback:
		text = fmt.Sprintf("%s %s!, %s", d.Mnemonic, c.Base, rng)
	default:
		text = fmt.Sprintf("%s %s, %s", d.Mnemonic, c.Base, rng)
	}

	baseReg := c.Base
	if d.Stack {
		baseReg = SP
	}

	return BlockCase{
		Text:            text,
		Instruction:     d,
		Base:            baseReg,
		Range:           rng,
		Writeback:       writeback,
		BaseOffset:      base,
		Offsets:         offsets,
		WritebackOffset: wb,
		Mask:            rng.Mask(),
	}
}
