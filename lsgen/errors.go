package lsgen

import (
	"fmt"
)

// ConfigurationError reports a table or parameter that cannot be used to
// generate cases at all: a malformed, incomplete or duplicated descriptor,
// or a reference buffer too small for the offsets it must host.
type ConfigurationError struct {
	Source string // e.g. "instruction catalog"
	Entry  string // offending mnemonic or parameter, if any
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("invalid %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Source, e.Entry, e.Reason)
}

func configErrorf(source, entry, format string, args ...interface{}) error {
	return &ConfigurationError{
		Source: source,
		Entry:  entry,
		Reason: fmt.Sprintf(format, args...),
	}
}

// InvalidCombinationError describes an addressing form and operand that
// the architecture does not permit for a particular instruction. These
// are pruned during generation and only surface through Check.
type InvalidCombinationError struct {
	Mnemonic string
	Form     Form
	Operand  string
	Reason   string
}

func (e *InvalidCombinationError) Error() string {
	return fmt.Sprintf("%s with %s operand %q: %s", e.Mnemonic, e.Form, e.Operand, e.Reason)
}
