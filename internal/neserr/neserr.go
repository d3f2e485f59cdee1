// Package neserr defines the error kinds surfaced by the emulation core.
package neserr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a core error, used by the host to decide
// an exit code.
type Kind int

const (
	// InvalidHeader means the cartridge loader could not parse an iNES
	// header.
	InvalidHeader Kind = iota
	// UnsupportedMapper means the cartridge requests a mapper number with
	// no registered constructor.
	UnsupportedMapper
	// BusConflict means two devices were attached to overlapping address
	// ranges on the same bus.
	BusConflict
	// UnmappedAddress means a read or write targeted an address no device
	// claims. Logged, not fatal.
	UnmappedAddress
	// IllegalOpcode means the CPU fetched an opcode outside the documented
	// set (unmapped or unofficial) while running in strict mode.
	IllegalOpcode
	// IoError wraps a failure reading a ROM file.
	IoError
)

func (k Kind) String() string {
	switch k {
	case InvalidHeader:
		return "invalid header"
	case UnsupportedMapper:
		return "unsupported mapper"
	case BusConflict:
		return "bus conflict"
	case UnmappedAddress:
		return "unmapped address"
	case IllegalOpcode:
		return "illegal opcode"
	case IoError:
		return "io error"
	default:
		return "unknown"
	}
}

// Error is a typed core error carrying its Kind alongside the usual message
// and wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
