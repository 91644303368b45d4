package biomed

// ErrorKind classifies upstream failures so the HTTP layer can map each one
// to a status code in a single place.
type ErrorKind int

const (
	// ErrTimeout - the upstream call exceeded its wall-clock deadline.
	ErrTimeout ErrorKind = iota
	// ErrUnreachable - network failure before a response was received.
	ErrUnreachable
	// ErrBadResponse - the upstream body was not valid JSON or did not match
	// the expected schema.
	ErrBadResponse
	// ErrRejected - the upstream answered non-2xx with a detail message.
	ErrRejected
	// ErrModelNotReady - a model-readiness flag reported by the upstream
	// health endpoint is false.
	ErrModelNotReady
)

type Error struct {
	Kind   ErrorKind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrTimeout:
		return "upstream timeout"
	case ErrUnreachable:
		return "upstream unreachable"
	case ErrBadResponse:
		return "upstream malformed: " + e.Detail
	case ErrRejected:
		return "upstream: " + e.Detail
	case ErrModelNotReady:
		return "model not loaded: " + e.Detail
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func wrapError(kind ErrorKind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}
