package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindLoad     ErrKind = iota // hive bytes could not be read or scanned
	ErrKindFormat                  // input shape is unusable (e.g. empty buffer)
	ErrKindState                   // operation invalid for current engine state
	ErrKindProvider                // narrative collaborator failed
	ErrKindConfig                  // configuration could not be loaded or validated
)

// String returns a short name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindLoad:
		return "load"
	case ErrKindFormat:
		return "format"
	case ErrKindState:
		return "state"
	case ErrKindProvider:
		return "provider"
	case ErrKindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind and message, so wrapped sentinels
// compare equal with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// Wrap returns a new *Error of the given kind carrying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinels commonly returned by implementations.
var (
	// ErrEmptyHive indicates a hive buffer with no bytes.
	ErrEmptyHive = &Error{Kind: ErrKindFormat, Msg: "empty hive buffer"}
	// ErrHiveNotLoaded indicates a lookup for a hive type that is not loaded.
	ErrHiveNotLoaded = &Error{Kind: ErrKindState, Msg: "hive not loaded"}
	// ErrNoProvider indicates a narrative request without a configured provider.
	ErrNoProvider = &Error{Kind: ErrKindProvider, Msg: "no narrative provider configured"}
)
