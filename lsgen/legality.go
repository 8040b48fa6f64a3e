package lsgen

// encodingClass groups load/stores that share an A32 encoding and
// therefore the same set of legal addressing forms.
type encodingClass uint8

const (
	classWordByte encodingClass = iota
	classMisc                   // halfword, signed byte and doubleword
	classWordByteUnprivileged
	classMiscUnprivileged
	classExclusive
)

func (c encodingClass) String() string {
	switch c {
	case classWordByte:
		return "word/byte"
	case classMisc:
		return "halfword/signed/doubleword"
	case classWordByteUnprivileged:
		return "unprivileged word/byte"
	case classMiscUnprivileged:
		return "unprivileged halfword/signed"
	case classExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

func classOf(d LoadStoreDescriptor) encodingClass {
	misc := d.Width == Width16 || d.Width == Width64 || d.Signed
	switch d.Extra {
	case ExtraExclusive:
		return classExclusive
	case ExtraUnprivileged:
		if misc {
			return classMiscUnprivileged
		}
		return classWordByteUnprivileged
	default:
		if misc {
			return classMisc
		}
		return classWordByte
	}
}

type legalityRule struct {
	Forms        []Form
	Kinds        []AddressingKind
	MaxImmediate int
	Negative     bool // whether subtracted (end-anchored) offsets are allowed
}

// legality is the complete table of which addressing forms and operand
// kinds each encoding class accepts.
//
// The unprivileged forms only exist post-indexed, the "miscellaneous"
// encodings have an 8-bit split immediate and no shifted register, and the
// exclusive accesses take a bare base register.
var legality = map[encodingClass]legalityRule{
	classWordByte: {
		Forms:        []Form{FormOffset, FormPreIndexed, FormPostIndexed},
		Kinds:        []AddressingKind{Immediate, RegisterOffset, ScaledRegisterOffset},
		MaxImmediate: 4095,
		Negative:     true,
	},
	classMisc: {
		Forms:        []Form{FormOffset, FormPreIndexed, FormPostIndexed},
		Kinds:        []AddressingKind{Immediate, RegisterOffset},
		MaxImmediate: 255,
		Negative:     true,
	},
	classWordByteUnprivileged: {
		Forms:        []Form{FormPostIndexed},
		Kinds:        []AddressingKind{Immediate, RegisterOffset, ScaledRegisterOffset},
		MaxImmediate: 4095,
		Negative:     true,
	},
	classMiscUnprivileged: {
		Forms:        []Form{FormPostIndexed},
		Kinds:        []AddressingKind{Immediate, RegisterOffset},
		MaxImmediate: 255,
		Negative:     true,
	},
	classExclusive: {
		Forms:        []Form{FormOffset},
		Kinds:        []AddressingKind{Immediate},
		MaxImmediate: 0,
		Negative:     false,
	},
}

func (r legalityRule) allowsForm(f Form) bool {
	for _, got := range r.Forms {
		if got == f {
			return true
		}
	}
	return false
}

func (r legalityRule) allowsKind(k AddressingKind) bool {
	for _, got := range r.Kinds {
		if got == k {
			return true
		}
	}
	return false
}

// LegalForms returns the addressing forms the architecture permits for d,
// in generation order.
func LegalForms(d LoadStoreDescriptor) []Form {
	return append([]Form(nil), legality[classOf(d)].Forms...)
}

// checkEncoding reports why spec cannot be encoded with form for d, or
// returns the empty string if it can. It does not consider buffer bounds.
func checkEncoding(d LoadStoreDescriptor, spec AddressingSpec, form Form) string {
	class := classOf(d)
	rule := legality[class]
	switch {
	case !rule.allowsForm(form):
		return class.String() + " accesses have no " + form.String() + " form"
	case !rule.allowsKind(spec.Kind):
		return class.String() + " accesses take no " + spec.Kind.String() + " offset"
	case spec.Kind == Immediate && spec.Magnitude() > rule.MaxImmediate:
		return "immediate does not fit the " + class.String() + " offset field"
	case spec.AnchoredAtEnd && !rule.Negative:
		return class.String() + " accesses cannot subtract an offset"
	}
	return ""
}
