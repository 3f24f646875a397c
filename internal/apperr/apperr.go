// Package apperr defines the error kinds the bot distinguishes when it logs
// a failure at the dispatch boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for logging.
type Kind int

const (
	// KindUnknown is reported for errors that carry no kind.
	KindUnknown Kind = iota
	// KindPersistence covers snapshot load and save failures.
	KindPersistence
	// KindDelivery covers outbound platform calls: sends, approvals, callback answers.
	KindDelivery
	// KindAuthorization is a non-admin calling an admin command.
	KindAuthorization
	// KindHandler is a recovered panic or an unexpected handler failure.
	KindHandler
)

func (k Kind) String() string {
	switch k {
	case KindPersistence:
		return "persistence"
	case KindDelivery:
		return "delivery"
	case KindAuthorization:
		return "authorization"
	case KindHandler:
		return "handler"
	default:
		return "unknown"
	}
}

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation name. A nil err still produces an
// error, which is what authorization refusals use.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error found in err's tree.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether any error in err's tree has the given kind. It walks
// errors.Join results, so a handler that collected several failures can be
// checked for each kind separately.
func Is(err error, kind Kind) bool {
	return len(Filter(err, kind)) > 0
}

// Filter returns every *Error of the given kind found in err's tree.
func Filter(err error, kind Kind) []*Error {
	var out []*Error
	walk(err, func(e *Error) {
		if e.Kind == kind {
			out = append(out, e)
		}
	})
	return out
}

// Flatten returns the leaf errors of a joined error, in order.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func walk(err error, fn func(*Error)) {
	for _, leaf := range Flatten(err) {
		var e *Error
		if errors.As(leaf, &e) {
			fn(e)
		}
	}
}
