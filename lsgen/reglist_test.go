package lsgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisterRanges(t *testing.T) {
	ranges := DefaultRegisterRanges.Ranges()
	if got, want := len(ranges), 78; got != want {
		t.Fatalf("got %d ranges, want %d", got, want)
	}
	if got := DefaultRegisterRanges.Count(); got != len(ranges) {
		t.Fatalf("Count(): got %d, want %d", got, len(ranges))
	}

	prev := RegisterRange{First: 0, Last: 0}
	for i, rng := range ranges {
		if rng.Last < rng.First || rng.Last > MaxListRegister {
			t.Fatalf("range %d: %v is malformed", i, rng)
		}
		if i > 0 && !(rng.First > prev.First || (rng.First == prev.First && rng.Last == prev.Last+1)) {
			t.Fatalf("range %d: %v does not follow %v", i, rng, prev)
		}
		regs := rng.Registers()
		if len(regs) != rng.Len() {
			t.Fatalf("range %v: got %d registers, want %d", rng, len(regs), rng.Len())
		}
		for j, r := range regs {
			if r != rng.First+Register(j) {
				t.Fatalf("range %v: register %d is %s", rng, j, r)
			}
		}
		prev = rng
	}
}

func TestRegisterRangesFrom(t *testing.T) {
	var got []RegisterRange
	var seqs [][]Register
	for rng, regs := range DefaultRegisterRanges.Seq() {
		if rng.First != 3 {
			continue
		}
		got = append(got, rng)
		seqs = append(seqs, regs)
	}

	var want []RegisterRange
	for last := Register(3); last <= 11; last++ {
		want = append(want, RegisterRange{First: 3, Last: last})
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranges from r3: (-want, +got)\n%s", diff)
	}

	// Earlier sequences must survive the later ones being extended.
	for i, regs := range seqs {
		if diff := cmp.Diff(got[i].Registers(), regs); diff != "" {
			t.Errorf("sequence for %v: (-want, +got)\n%s", got[i], diff)
		}
	}

	// [3,5] is [3,4] extended by r5.
	if diff := cmp.Diff(append(seqs[1], 5), seqs[2]); diff != "" {
		t.Errorf("[3,5] is not [3,4] plus r5: (-want, +got)\n%s", diff)
	}
	if diff := cmp.Diff([]Register{3, 4}, seqs[1]); diff != "" {
		t.Errorf("appending to a yielded sequence changed it: (-want, +got)\n%s", diff)
	}
}

func TestRegisterRangeSeqRestarts(t *testing.T) {
	seq := DefaultRegisterRanges.Seq()

	n := 0
	for range seq {
		n++
		if n == 5 {
			break
		}
	}

	var first RegisterRange
	total := 0
	for rng := range seq {
		if total == 0 {
			first = rng
		}
		total++
	}
	if first != (RegisterRange{First: 0, Last: 0}) || total != 78 {
		t.Fatalf("second pass started at %v and produced %d ranges", first, total)
	}
}

func TestRegisterRangeMask(t *testing.T) {
	tests := []struct {
		Range RegisterRange
		Mask  RegisterMask
		Text  string
	}{
		{RegisterRange{0, 0}, 0b1, "{r0}"},
		{RegisterRange{0, 2}, 0b111, "{r0-r2}"},
		{RegisterRange{3, 5}, 0b111000, "{r3-r5}"},
		{RegisterRange{0, 11}, 0b1111_1111_1111, "{r0-r11}"},
	}

	for _, test := range tests {
		if got := test.Range.Mask(); got != test.Mask {
			t.Errorf("%v.Mask(): got %s, want %s", test.Range, got, test.Mask)
		}
		if got := test.Range.String(); got != test.Text {
			t.Errorf("%v.String(): got %q, want %q", test.Range, got, test.Text)
		}
		for r := Register(0); r < 16; r++ {
			in := r >= test.Range.First && r <= test.Range.Last
			if test.Mask.Has(r) != in {
				t.Errorf("%s.Has(%s): got %v", test.Mask, r, !in)
			}
		}
	}
}
