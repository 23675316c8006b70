package pipeline

import "fmt"

// Kind classifies a pipeline failure for the boundary that reports it.
type Kind int

const (
	// KindMissingFile: no file, or a file with an empty name.
	KindMissingFile Kind = iota + 1
	// KindUnsupportedType: the filename does not end in ".txt".
	KindUnsupportedType
	// KindDecode: the payload could not be decoded as UTF-8 text.
	KindDecode
	// KindProcessing: a stage failed after the document was accepted.
	KindProcessing
)

func (k Kind) String() string {
	switch k {
	case KindMissingFile:
		return "missing_file"
	case KindUnsupportedType:
		return "unsupported_type"
	case KindDecode:
		return "decode"
	case KindProcessing:
		return "processing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ClientError reports whether the caller can fix the failure by changing
// the request. Client errors never mutate state.
func (k Kind) ClientError() bool {
	return k == KindMissingFile || k == KindUnsupportedType
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
