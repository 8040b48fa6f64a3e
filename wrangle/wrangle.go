// Command wrangle prints the ARM load/store test vectors produced by
// package lsgen in a form an external harness can splice in.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"

	"github.com/apparentlymart/arm-ldst-meta/lsgen"
)

var program = filepath.Base(os.Args[0])

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	log.SetPrefix(program + ": ")
}

func main() {
	var help, blocks, dump bool
	var format, output, only string
	flag.BoolVar(&help, "h", false, "Show this message and exit.")
	flag.BoolVar(&blocks, "blocks", true, "Include block transfer (ldm/stm/push/pop) cases.")
	flag.BoolVar(&dump, "dump", false, "Dump the instruction tables and addressing modes to stderr.")
	flag.StringVar(&format, "format", "text", "Output format: text, json, toml or c.")
	flag.StringVar(&output, "o", "", "Write to this file instead of stdout.")
	flag.StringVar(&only, "only", "", "Comma-separated mnemonics to restrict generation to.")

	flag.Usage = func() {
		log.Printf("Usage:\n  %s [OPTIONS]\n\n", program)
		flag.PrintDefaults()
		os.Exit(2)
	}

	flag.Parse()
	if help || flag.NArg() != 0 {
		flag.Usage()
	}

	err := wrangle(format, output, only, blocks, dump)
	if err != nil {
		log.Fatal(err)
	}
}

func wrangle(format, output, only string, blocks, dump bool) error {
	write, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q", format)
	}

	g, err := lsgen.NewGenerator()
	if err != nil {
		return err
	}

	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(os.Stderr, g.Instructions.Descriptors(), g.Blocks.Descriptors(), g.Modes.Specs())
	}

	sel, err := parseSelection(g, only)
	if err != nil {
		return err
	}

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	err = write(bw, g, sel, blocks)
	if err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	err = bw.Flush()
	if err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	if output != "" {
		return w.Close()
	}
	return nil
}
