package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a store failure.
type Kind int

const (
	// KindIO is any driver or connection failure.
	KindIO Kind = iota
	// KindNotFound means no active row matched.
	KindNotFound
	// KindConflict means an identity or uniqueness constraint was violated.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return "io"
	}
}

var (
	// ErrNotFound matches any *Error of KindNotFound.
	ErrNotFound = errors.New("not found")
	// ErrConflict matches any *Error of KindConflict.
	ErrConflict = errors.New("conflict")
)

// Error is returned by every repository operation that fails.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers test the kind with errors.Is(err, store.ErrConflict).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

// IsConflict reports whether err is a store conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound reports whether err is a store miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// translate wraps a gorm error into an *Error. Nil stays nil.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Op: op, Kind: KindNotFound, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateMessage(err):
		return &Error{Op: op, Kind: KindConflict, Err: err}
	default:
		return &Error{Op: op, Kind: KindIO, Err: err}
	}
}

// isDuplicateMessage catches drivers that were opened without error translation.
func isDuplicateMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// NotFound builds a KindNotFound error for op.
func NotFound(op string) error {
	return &Error{Op: op, Kind: KindNotFound, Err: gorm.ErrRecordNotFound}
}

// Conflict builds a KindConflict error for op.
func Conflict(op string, detail string) error {
	return &Error{Op: op, Kind: KindConflict, Err: errors.New(detail)}
}
