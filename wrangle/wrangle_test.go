package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"rsc.io/diff"

	"github.com/apparentlymart/arm-ldst-meta/lsgen"
)

func newTestGenerator(t *testing.T) *lsgen.Generator {
	t.Helper()
	g, err := lsgen.NewGenerator()
	if err != nil {
		t.Fatalf("NewGenerator(): %v", err)
	}
	return g
}

func TestParseSelection(t *testing.T) {
	g := newTestGenerator(t)

	sel, err := parseSelection(g, "")
	if err != nil || sel != nil {
		t.Fatalf("parseSelection(\"\"): got %v, %v", sel, err)
	}

	sel, err = parseSelection(g, " LDR, push,,")
	if err != nil {
		t.Fatalf("parseSelection(): %v", err)
	}
	if diff := cmp.Diff(selection{"ldr": {}, "push": {}}, sel); diff != "" {
		t.Fatalf("parseSelection(): (-want, +got)\n%s", diff)
	}
	if !sel.has("ldr") || sel.has("str") {
		t.Fatalf("has(): got ldr=%v str=%v", sel.has("ldr"), sel.has("str"))
	}

	_, err = parseSelection(g, "ldr,ldrq")
	if err == nil || !strings.Contains(err.Error(), `"ldrq"`) {
		t.Fatalf("parseSelection(ldrq): got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	g := newTestGenerator(t)

	var buf bytes.Buffer
	err := writeText(&buf, g, selection{"ldrexb": {}}, true)
	if err != nil {
		t.Fatalf("writeText(): %v", err)
	}

	line := func(text string) string {
		return fmt.Sprintf("%-28s\toffset\tbase=0 access=0 writeback=0 u8\n", text)
	}
	want := "# buffer 8192 bytes, r8=8, r11=16\n" +
		line("ldrexb r0, [r2]") +
		line("ldrexb r0, [r5]") +
		line("ldrexb r6, [r2]") +
		line("ldrexb r6, [r5]")

	if got := buf.String(); got != want {
		t.Fatalf("writeText(): output mismatch:\n%s", diff.Format(got, want))
	}
}

func TestWriteJSON(t *testing.T) {
	g := newTestGenerator(t)

	var buf bytes.Buffer
	err := writeJSON(&buf, g, selection{"ldr": {}, "pop": {}}, true)
	if err != nil {
		t.Fatalf("writeJSON(): %v", err)
	}

	var doc document
	err = json.Unmarshal(buf.Bytes(), &doc)
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if doc.BufferSize != 8192 || len(doc.Cases) != 204 || len(doc.Blocks) != 78 {
		t.Fatalf("got buffer %d, %d cases, %d blocks", doc.BufferSize, len(doc.Cases), len(doc.Blocks))
	}

	wantCase := caseRecord{
		Text:            "ldr r0, [r2], #16",
		Mnemonic:        "ldr",
		Form:            "post-indexed",
		Kind:            "immediate",
		Operand:         "#16",
		Offset:          16,
		BaseOffset:      0,
		AccessOffset:    0,
		WritebackOffset: 16,
		Width:           32,
	}
	if diff := cmp.Diff(wantCase, doc.Cases[8]); diff != "" {
		t.Fatalf("case 8: (-want, +got)\n%s", diff)
	}

	wantBlock := blockRecord{
		Text:            "pop {r0-r3}",
		Mnemonic:        "pop",
		Mode:            "ia",
		Base:            "sp",
		Mask:            0xf,
		Writeback:       true,
		BaseOffset:      0,
		Offsets:         []int{0, 4, 8, 12},
		WritebackOffset: 16,
	}
	if diff := cmp.Diff(wantBlock, doc.Blocks[3]); diff != "" {
		t.Fatalf("block 3: (-want, +got)\n%s", diff)
	}
}

func TestWriteTOML(t *testing.T) {
	g := newTestGenerator(t)
	sel := selection{"strexd": {}, "stmda": {}}

	var buf bytes.Buffer
	err := writeTOML(&buf, g, sel, true)
	if err != nil {
		t.Fatalf("writeTOML(): %v", err)
	}

	var got document
	_, err = toml.Decode(buf.String(), &got)
	if err != nil {
		t.Fatalf("failed to parse output: %v\n%s", err, buf.String())
	}

	want := buildDocument(g, sel, true)
	if diff := cmp.Diff(*want, got); diff != "" {
		t.Fatalf("writeTOML(): (-want, +got)\n%s", diff)
	}
	if len(got.Cases) != 4 || got.Cases[0].Text != "strexd r12, r0, r1, [r2]" {
		t.Fatalf("got %d cases, first %+v", len(got.Cases), got.Cases)
	}
}

func TestWriteCSource(t *testing.T) {
	g := newTestGenerator(t)

	var buf bytes.Buffer
	err := writeCSource(&buf, g, selection{"ldrsh": {}, "push": {}}, true)
	if err != nil {
		t.Fatalf("writeCSource(): %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"#define IO_DATA_SIZE 8192\n",
		"static void test_ldrsh(void)\n{\n",
		"\t/* pre-indexed: ldrsh r0, [r2, #16]! */\n",
		"\t\t\t\"ldrsh r6, [r5], r11\\n\\t\"\n",
		"\tassert((signed short)lo == *(signed short *)(io_data + 255));\n",
		"\tassert(base == (unsigned long)(io_data + 124));\n",
		"\t\t\t\"mov r8, #8\\n\\t\"\n",
		"static void test_load_store(void)\n{\n\ttest_ldrsh();\n}\n",
		"\t{ \"push {r0-r11}\", 0x0fff, 1, 1, 0, 8192, 8144, 8144 },\n",
		"#define NUM_BLOCK_CASES 78\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("writeCSource(): output lacks %q", want)
		}
	}

	if strings.Contains(got, "test_ldr(") {
		t.Errorf("writeCSource(): output includes unselected ldr")
	}
}
