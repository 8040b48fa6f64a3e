package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/apparentlymart/arm-ldst-meta/lsgen"
)

// writeCSource emits guest test code: one function per load/store
// instruction, each case an inline assembly block followed by checks
// against io_data, and a table of block transfer cases.
func writeCSource(w io.Writer, g *lsgen.Generator, sel selection, blocks bool) error {
	fmt.Fprintf(w, "/* Generated by %s. DO NOT EDIT. */\n\n", program)
	fmt.Fprintf(w, "#define IO_DATA_SIZE %d\n\n", g.Modes.BufferSize())

	var preload strings.Builder
	for _, ir := range g.Modes.IndexRegisters() {
		fmt.Fprintf(&preload, "\t\t\t\"mov %s, #%d\\n\\t\"\n", ir.Reg, ir.Value)
	}

	var funcs []string
	var current string
	for gc := range g.LoadStoreCases() {
		mnem := gc.Instruction.Mnemonic
		if !sel.has(mnem) {
			continue
		}
		if mnem != current {
			if current != "" {
				io.WriteString(w, "}\n\n")
			}
			current = mnem
			fn := "test_" + mnem // mnemonics are plain lowercase words
			funcs = append(funcs, fn)
			fmt.Fprintf(w, "static void %s(void)\n{\n", fn)
			io.WriteString(w, "\tunsigned long lo, hi, base;\n\n")
		}
		writeCCase(w, gc, preload.String())
	}
	if current != "" {
		io.WriteString(w, "}\n\n")
	}

	io.WriteString(w, "static void test_load_store(void)\n{\n")
	for _, fn := range funcs {
		fmt.Fprintf(w, "\t%s();\n", fn)
	}
	io.WriteString(w, "}\n")

	if !blocks {
		return nil
	}
	return writeCBlockTable(w, g, sel)
}

func cType(width lsgen.Width, signed bool) string {
	var t string
	switch width {
	case lsgen.Width8:
		t = "char"
	case lsgen.Width16:
		t = "short"
	case lsgen.Width32:
		t = "int"
	default:
		t = "long long"
	}
	if signed {
		return "signed " + t
	}
	return "unsigned " + t
}

// writeCCase writes the block for one case. Loads compare the
// destination with the buffer contents; stores write back what is
// already in the buffer, so the host sees a matching write. Both check
// where the base register ends up.
func writeCCase(w io.Writer, gc lsgen.GeneratedCase, preload string) {
	dst := gc.Dst.String()
	hiReg := dst
	if gc.Instruction.Dual() {
		hiReg = (gc.Dst + 1).String()
	}

	fmt.Fprintf(w, "\t/* %s: %s */\n", gc.Form, gc.Text)
	fmt.Fprintf(w, "\tbase = (unsigned long)(io_data + %d);\n", gc.BaseOffset)
	switch {
	case !gc.Store:
		io.WriteString(w, "\tlo = hi = 0;\n")
	case gc.Instruction.Dual():
		fmt.Fprintf(w, "\tlo = *(unsigned int *)(io_data + %d);\n", gc.AccessOffset)
		fmt.Fprintf(w, "\thi = *(unsigned int *)(io_data + %d);\n", gc.AccessOffset+4)
	default:
		fmt.Fprintf(w, "\tlo = *(%s *)(io_data + %d);\n", cType(gc.Width, false), gc.AccessOffset)
		io.WriteString(w, "\thi = 0;\n")
	}
	io.WriteString(w, "\tasm volatile(\n")
	io.WriteString(w, preload)
	fmt.Fprintf(w, "\t\t\t\"mov %s, %%[base]\\n\\t\"\n", gc.Base)
	if gc.Store {
		fmt.Fprintf(w, "\t\t\t\"mov %s, %%[lo]\\n\\t\"\n", dst)
		if gc.Instruction.Dual() {
			fmt.Fprintf(w, "\t\t\t\"mov %s, %%[hi]\\n\\t\"\n", hiReg)
		}
	}
	fmt.Fprintf(w, "\t\t\t\"%s\\n\\t\"\n", gc.Text)
	if !gc.Store {
		fmt.Fprintf(w, "\t\t\t\"mov %%[lo], %s\\n\\t\"\n", dst)
		fmt.Fprintf(w, "\t\t\t\"mov %%[hi], %s\\n\\t\"\n", hiReg)
	}
	fmt.Fprintf(w, "\t\t\t\"mov %%[base], %s\"\n", gc.Base)
	io.WriteString(w, "\t\t\t: [lo] \"+r\" (lo), [hi] \"+r\" (hi), [base] \"+r\" (base)\n")
	io.WriteString(w, "\t\t\t:\n")
	io.WriteString(w, "\t\t\t: \"r0\", \"r1\", \"r2\", \"r5\", \"r6\", \"r7\", \"r8\", \"r11\", \"r12\", \"memory\");\n")

	if !gc.Store {
		if gc.Instruction.Dual() {
			fmt.Fprintf(w, "\tassert(lo == *(unsigned int *)(io_data + %d));\n", gc.AccessOffset)
			fmt.Fprintf(w, "\tassert(hi == *(unsigned int *)(io_data + %d));\n", gc.AccessOffset+4)
		} else {
			fmt.Fprintf(w, "\tassert((%s)lo == *(%s *)(io_data + %d));\n", cType(gc.Width, gc.Signed), cType(gc.Width, gc.Signed), gc.AccessOffset)
		}
	}
	fmt.Fprintf(w, "\tassert(base == (unsigned long)(io_data + %d));\n\n", gc.WritebackOffset)
}

func writeCBlockTable(w io.Writer, g *lsgen.Generator, sel selection) error {
	io.WriteString(w, "\nstruct block_case {\n")
	io.WriteString(w, "\tconst char *insn;\n")
	io.WriteString(w, "\tunsigned short mask;\n")
	io.WriteString(w, "\tint store, writeback, arm_only;\n")
	io.WriteString(w, "\tint base_offset, first_offset, writeback_offset;\n")
	io.WriteString(w, "};\n\n")
	io.WriteString(w, "static const struct block_case block_cases[] = {\n")
	n := 0
	for bc := range g.BlockCases() {
		if !sel.has(bc.Instruction.Mnemonic) {
			continue
		}
		fmt.Fprintf(w, "\t{ %q, 0x%04x, %d, %d, %d, %d, %d, %d },\n",
			bc.Text, uint16(bc.Mask),
			cBool(bc.Instruction.Store), cBool(bc.Writeback), cBool(bc.Instruction.ARMOnly),
			bc.BaseOffset, bc.Offsets[0], bc.WritebackOffset)
		n++
	}
	io.WriteString(w, "};\n\n")
	_, err := fmt.Fprintf(w, "#define NUM_BLOCK_CASES %d\n", n)
	return err
}

func cBool(b bool) int {
	if b {
		return 1
	}
	return 0
}
