package mediatype

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies why a source produced no verdict. The resolver treats
// every kind the same way: record it and move to the next source.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindProviderUnavailable
	KindQueryMalformed
	KindNoMatch
	KindDataAmbiguous
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindProviderUnavailable:
		return "provider unavailable"
	case KindQueryMalformed:
		return "query malformed"
	case KindNoMatch:
		return "no match"
	case KindDataAmbiguous:
		return "data ambiguous"
	default:
		return "unknown"
	}
}

var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrQueryMalformed      = errors.New("query malformed")
	ErrNoMatch             = errors.New("no match")
	ErrDataAmbiguous       = errors.New("data ambiguous")
)

// KindOf maps err onto the taxonomy. Errors outside it count as
// ProviderUnavailable.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrQueryMalformed):
		return KindQueryMalformed
	case errors.Is(err, ErrNoMatch):
		return KindNoMatch
	case errors.Is(err, ErrDataAmbiguous):
		return KindDataAmbiguous
	default:
		return KindProviderUnavailable
	}
}

// withKind tags err with one of the taxonomy sentinels while keeping its
// message and chain.
func withKind(kind, err error, format string, args ...any) error {
	return errors.Wrapf(&kindError{kind: kind, err: err}, format, args...)
}

func unavailable(err error, format string, args ...any) error {
	return withKind(ErrProviderUnavailable, err, format, args...)
}

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.err.Error()
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.err
}
