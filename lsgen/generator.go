// Package lsgen enumerates ARM load/store and block transfer instruction
// variants across their addressing modes, for an external harness to
// assemble and check against a reference data buffer.
//
// Everything here is a pure function of the fixed tables: repeated
// generation yields the same cases in the same order.
package lsgen

import (
	"fmt"
	"iter"
)

// Generator bundles the default tables and combinators.
type Generator struct {
	Instructions *InstructionCatalog
	Blocks       *BlockTransferCatalog
	Modes        *AddressingModeSet
	Operands     *OperandCombinator
	BlockOps     *BlockCombinator
}

// NewGenerator builds a Generator from the default tables, failing with a
// *ConfigurationError (wrapped) if any of them is inconsistent.
func NewGenerator() (*Generator, error) {
	insts, err := DefaultInstructionCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction catalog: %w", err)
	}
	blocks, err := DefaultBlockTransferCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build block transfer catalog: %w", err)
	}
	modes, err := DefaultAddressingModeSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build addressing modes: %w", err)
	}
	ops, err := NewOperandCombinator(modes)
	if err != nil {
		return nil, fmt.Errorf("failed to build operand combinator: %w", err)
	}
	blockOps, err := NewBlockCombinator(modes.BufferSize())
	if err != nil {
		return nil, fmt.Errorf("failed to build block combinator: %w", err)
	}

	return &Generator{
		Instructions: insts,
		Blocks:       blocks,
		Modes:        modes,
		Operands:     ops,
		BlockOps:     blockOps,
	}, nil
}

// LoadStoreCases yields the cases of every catalog instruction in catalog
// order. Each range over the result starts again from the beginning.
func (g *Generator) LoadStoreCases() iter.Seq[GeneratedCase] {
	return func(yield func(GeneratedCase) bool) {
		for _, d := range g.Instructions.descs {
			specs := g.Operands.ValidSpecs(d)
			if !g.Operands.each(d, specs, LegalForms(d), yield) {
				return
			}
		}
	}
}

// BlockCases yields the cases of every block transfer in catalog order.
// Each range over the result starts again from the beginning.
func (g *Generator) BlockCases() iter.Seq[BlockCase] {
	return func(yield func(BlockCase) bool) {
		for _, d := range g.Blocks.descs {
			// Every catalog entry was checked to have a mode when the
			// catalog was built.
			cases, _ := g.BlockOps.Cases(d)
			for _, bc := range cases {
				if !yield(bc) {
					return
				}
			}
		}
	}
}
