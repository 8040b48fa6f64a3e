package lsgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultInstructionCatalog(t *testing.T) {
	cat, err := DefaultInstructionCatalog()
	if err != nil {
		t.Fatalf("DefaultInstructionCatalog(): %v", err)
	}

	if got, want := cat.Len(), 26; got != want {
		t.Fatalf("got %d descriptors, want %d", got, want)
	}

	tests := []struct {
		Mnemonic string
		Want     LoadStoreDescriptor
	}{
		{"ldr", LoadStoreDescriptor{Mnemonic: "ldr", Width: Width32}},
		{"STRT", LoadStoreDescriptor{Mnemonic: "strt", Store: true, Width: Width32, Extra: ExtraUnprivileged}},
		{"ldrsb", LoadStoreDescriptor{Mnemonic: "ldrsb", Width: Width8, Signed: true}},
		{"ldrexd", LoadStoreDescriptor{Mnemonic: "ldrexd", Width: Width64, Extra: ExtraExclusive}},
		{"strexd", LoadStoreDescriptor{Mnemonic: "strexd", Store: true, Width: Width64, Extra: ExtraExclusive}},
	}

	for _, test := range tests {
		got, ok := cat.Lookup(test.Mnemonic)
		if !ok {
			t.Errorf("Lookup(%q): not found", test.Mnemonic)
			continue
		}
		if diff := cmp.Diff(test.Want, got); diff != "" {
			t.Errorf("Lookup(%q): (-want, +got)\n%s", test.Mnemonic, diff)
		}
	}

	if _, ok := cat.Lookup("ldm"); ok {
		t.Errorf("Lookup(%q): unexpectedly found", "ldm")
	}

	for _, d := range cat.Descriptors() {
		if d.Signed && (d.Store || d.Width >= Width32) {
			t.Errorf("%s: signed descriptor must be a narrow load", d.Mnemonic)
		}
	}
}

func TestNewInstructionCatalogErrors(t *testing.T) {
	tests := []struct {
		Name  string
		Descs []LoadStoreDescriptor
		Want  string
	}{
		{
			Name:  "empty",
			Descs: nil,
			Want:  "no descriptors",
		},
		{
			Name:  "missing mnemonic",
			Descs: []LoadStoreDescriptor{{Width: Width32}},
			Want:  "no mnemonic",
		},
		{
			Name:  "bad mnemonic",
			Descs: []LoadStoreDescriptor{{Mnemonic: "ldr r0", Width: Width32}},
			Want:  "lowercase letters",
		},
		{
			Name:  "missing width",
			Descs: []LoadStoreDescriptor{{Mnemonic: "ldr"}},
			Want:  "unsupported transfer width 0",
		},
		{
			Name:  "unknown extra class",
			Descs: []LoadStoreDescriptor{{Mnemonic: "ldr", Width: Width32, Extra: numExtraClasses}},
			Want:  "unknown extra class",
		},
		{
			Name:  "signed store",
			Descs: []LoadStoreDescriptor{{Mnemonic: "strsb", Store: true, Width: Width8, Signed: true}},
			Want:  "cannot be sign-extending",
		},
		{
			Name:  "signed word",
			Descs: []LoadStoreDescriptor{{Mnemonic: "ldrsw", Width: Width32, Signed: true}},
			Want:  "narrower than 32 bits",
		},
		{
			Name: "duplicate",
			Descs: []LoadStoreDescriptor{
				{Mnemonic: "ldr", Width: Width32},
				{Mnemonic: "ldr", Width: Width32, Extra: ExtraUnprivileged},
			},
			Want: "ldr: duplicate mnemonic",
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := NewInstructionCatalog(test.Descs)
			if err == nil {
				t.Fatalf("NewInstructionCatalog(): got no error, want %q", test.Want)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("NewInstructionCatalog(): got %T, want *ConfigurationError", err)
			}
			if !strings.Contains(err.Error(), test.Want) {
				t.Fatalf("NewInstructionCatalog(): got error %q, want %q", err, test.Want)
			}
		})
	}
}

func TestExtraClassNames(t *testing.T) {
	for c := ExtraNone; c < numExtraClasses; c++ {
		got, ok := ParseExtraClass(c.String())
		if !ok || got != c {
			t.Errorf("ParseExtraClass(%q): got %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseExtraClass("privileged"); ok {
		t.Errorf("ParseExtraClass(%q): unexpectedly succeeded", "privileged")
	}
	if _, err := numExtraClasses.MarshalText(); err == nil {
		t.Errorf("MarshalText(): got no error for an unknown class")
	}
}
