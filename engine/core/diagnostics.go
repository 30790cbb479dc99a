package core

import (
	"errors"
	"fmt"
)

// Diagnostic is one recoverable (or, for skeleton imports, fatal) condition
// met during an import run. Kind is always one of the sentinels in errors.go.
type Diagnostic struct {
	Kind    error
	Subject string
	Err     error
}

func NewDiagnostic(kind error, subject string, err error) Diagnostic {
	return Diagnostic{Kind: kind, Subject: subject, Err: err}
}

func (d Diagnostic) Error() string {
	if d.Err == nil || d.Err == d.Kind {
		return fmt.Sprintf("%s: %s", d.Kind, d.Subject)
	}
	return fmt.Sprintf("%s: %s: %v", d.Kind, d.Subject, d.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (d Diagnostic) Unwrap() []error {
	if d.Err == nil {
		return []error{d.Kind}
	}
	return []error{d.Kind, d.Err}
}

// Diagnostics is an append-only, ordered collection for a single run.
type Diagnostics []Diagnostic

func (ds *Diagnostics) Add(kind error, subject string, err error) {
	d := NewDiagnostic(kind, subject, err)
	LogWarn("%s", d)
	*ds = append(*ds, d)
}

func (ds *Diagnostics) Append(more ...Diagnostic) {
	*ds = append(*ds, more...)
}

// Count returns how many diagnostics match kind.
func (ds Diagnostics) Count(kind error) int {
	n := 0
	for _, d := range ds {
		if errors.Is(d.Kind, kind) {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics of the given kind in recorded order.
func (ds Diagnostics) Filter(kind error) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if errors.Is(d.Kind, kind) {
			out = append(out, d)
		}
	}
	return out
}
