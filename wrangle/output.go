package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/apparentlymart/arm-ldst-meta/lsgen"
)

// selection is the set of mnemonics to generate. A nil selection
// includes everything.
type selection map[string]struct{}

func (s selection) has(mnem string) bool {
	if s == nil {
		return true
	}
	_, ok := s[mnem]
	return ok
}

func parseSelection(g *lsgen.Generator, only string) (selection, error) {
	if strings.TrimSpace(only) == "" {
		return nil, nil
	}
	ret := make(selection)
	for _, raw := range strings.Split(only, ",") {
		mnem := strings.ToLower(strings.TrimSpace(raw))
		if mnem == "" {
			continue
		}
		_, isLoadStore := g.Instructions.Lookup(mnem)
		_, isBlock := g.Blocks.Lookup(mnem)
		if !isLoadStore && !isBlock {
			return nil, fmt.Errorf("unknown instruction %q", mnem)
		}
		ret[mnem] = struct{}{}
	}
	return ret, nil
}

type writeFunc func(w io.Writer, g *lsgen.Generator, sel selection, blocks bool) error

var writers = map[string]writeFunc{
	"text": writeText,
	"json": writeJSON,
	"toml": writeTOML,
	"c":    writeCSource,
}

type indexRecord struct {
	Register string `json:"register" toml:"register"`
	Value    uint32 `json:"value" toml:"value"`
}

type caseRecord struct {
	Text            string `json:"text" toml:"text"`
	Mnemonic        string `json:"mnemonic" toml:"mnemonic"`
	Form            string `json:"form" toml:"form"`
	Kind            string `json:"kind" toml:"kind"`
	Operand         string `json:"operand" toml:"operand"`
	Anchored        bool   `json:"anchored_at_end" toml:"anchored_at_end"`
	Offset          int    `json:"offset" toml:"offset"`
	BaseOffset      int    `json:"base_offset" toml:"base_offset"`
	AccessOffset    int    `json:"access_offset" toml:"access_offset"`
	WritebackOffset int    `json:"writeback_offset" toml:"writeback_offset"`
	Width           int    `json:"width" toml:"width"`
	Signed          bool   `json:"signed" toml:"signed"`
	Store           bool   `json:"store" toml:"store"`
}

type blockRecord struct {
	Text            string `json:"text" toml:"text"`
	Mnemonic        string `json:"mnemonic" toml:"mnemonic"`
	Mode            string `json:"mode" toml:"mode"`
	Base            string `json:"base" toml:"base"`
	Mask            uint16 `json:"mask" toml:"mask"`
	Writeback       bool   `json:"writeback" toml:"writeback"`
	Store           bool   `json:"store" toml:"store"`
	ARMOnly         bool   `json:"arm_only" toml:"arm_only"`
	BaseOffset      int    `json:"base_offset" toml:"base_offset"`
	Offsets         []int  `json:"offsets" toml:"offsets"`
	WritebackOffset int    `json:"writeback_offset" toml:"writeback_offset"`
}

type document struct {
	BufferSize     int           `json:"buffer_size" toml:"buffer_size"`
	IndexRegisters []indexRecord `json:"index_registers" toml:"index_register"`
	Cases          []caseRecord  `json:"cases" toml:"case"`
	Blocks         []blockRecord `json:"blocks,omitempty" toml:"block,omitempty"`
}

func newCaseRecord(gc lsgen.GeneratedCase) caseRecord {
	return caseRecord{
		Text:            gc.Text,
		Mnemonic:        gc.Instruction.Mnemonic,
		Form:            gc.Form.String(),
		Kind:            gc.Addressing.Kind.String(),
		Operand:         gc.Addressing.Operand,
		Anchored:        gc.Addressing.AnchoredAtEnd,
		Offset:          gc.Offset,
		BaseOffset:      gc.BaseOffset,
		AccessOffset:    gc.AccessOffset,
		WritebackOffset: gc.WritebackOffset,
		Width:           int(gc.Width),
		Signed:          gc.Signed,
		Store:           gc.Store,
	}
}

func newBlockRecord(bc lsgen.BlockCase) blockRecord {
	// Catalog descriptors always have a mode.
	mode, _ := bc.Instruction.Mode()
	return blockRecord{
		Text:            bc.Text,
		Mnemonic:        bc.Instruction.Mnemonic,
		Mode:            mode.String(),
		Base:            bc.Base.String(),
		Mask:            uint16(bc.Mask),
		Writeback:       bc.Writeback,
		Store:           bc.Instruction.Store,
		ARMOnly:         bc.Instruction.ARMOnly,
		BaseOffset:      bc.BaseOffset,
		Offsets:         bc.Offsets,
		WritebackOffset: bc.WritebackOffset,
	}
}

func buildDocument(g *lsgen.Generator, sel selection, blocks bool) *document {
	doc := &document{
		BufferSize: g.Modes.BufferSize(),
	}
	for _, ir := range g.Modes.IndexRegisters() {
		doc.IndexRegisters = append(doc.IndexRegisters, indexRecord{Register: ir.Reg.String(), Value: ir.Value})
	}
	for gc := range g.LoadStoreCases() {
		if sel.has(gc.Instruction.Mnemonic) {
			doc.Cases = append(doc.Cases, newCaseRecord(gc))
		}
	}
	if blocks {
		for bc := range g.BlockCases() {
			if sel.has(bc.Instruction.Mnemonic) {
				doc.Blocks = append(doc.Blocks, newBlockRecord(bc))
			}
		}
	}
	return doc
}

func writeJSON(w io.Writer, g *lsgen.Generator, sel selection, blocks bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(buildDocument(g, sel, blocks))
}

func writeTOML(w io.Writer, g *lsgen.Generator, sel selection, blocks bool) error {
	return toml.NewEncoder(w).Encode(buildDocument(g, sel, blocks))
}

// writeText prints one case per line: the instruction, then the fields a
// harness needs to check it.
func writeText(w io.Writer, g *lsgen.Generator, sel selection, blocks bool) error {
	fmt.Fprintf(w, "# buffer %d bytes", g.Modes.BufferSize())
	for _, ir := range g.Modes.IndexRegisters() {
		fmt.Fprintf(w, ", %s=%d", ir.Reg, ir.Value)
	}
	fmt.Fprintln(w)

	for gc := range g.LoadStoreCases() {
		if !sel.has(gc.Instruction.Mnemonic) {
			continue
		}
		sign := "u"
		if gc.Signed {
			sign = "s"
		}
		fmt.Fprintf(w, "%-28s\t%s\tbase=%d access=%d writeback=%d %s%d\n", gc.Text, gc.Form, gc.BaseOffset, gc.AccessOffset, gc.WritebackOffset, sign, gc.Width)
	}

	if !blocks {
		return nil
	}
	for bc := range g.BlockCases() {
		if !sel.has(bc.Instruction.Mnemonic) {
			continue
		}
		_, err := fmt.Fprintf(w, "%-28s\tbase=%d words=%v writeback=%d\n", bc.Text, bc.BaseOffset, bc.Offsets, bc.WritebackOffset)
		if err != nil {
			return err
		}
	}
	return nil
}
