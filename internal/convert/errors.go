package convert

import "fmt"

type Kind int

const (
	BadRequest Kind = iota
	ToolNotInstalled
	ConversionFailed
	OutputEmpty
	ProbeFailed
	InternalError
)

// Messages are shown to the caller verbatim, so they must never
// contain details of the underlying cause.
const (
	MsgURLRequired      = "URL is required"
	MsgInvalidURL       = "Invalid SoundCloud URL"
	MsgToolNotInstalled = "yt-dlp is not installed. Please install it using: brew install yt-dlp"
	MsgConversionFailed = "Failed to download and convert audio"
	MsgOutputEmpty      = "Failed to create audio file"
	MsgProbeFailed      = "Failed to get track metadata"
	MsgInternal         = "Internal server error"
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BAD_REQUEST"
	case ToolNotInstalled:
		return "TOOL_NOT_INSTALLED"
	case ConversionFailed:
		return "CONVERSION_FAILED"
	case OutputEmpty:
		return "OUTPUT_EMPTY"
	case ProbeFailed:
		return "PROBE_FAILED"
	case InternalError:
		return "INTERNAL_ERROR"
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Error is the only error type returned by the conversion Service. The
// Message is safe to show to a caller, while the Cause is intended
// for server-side logging only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (err *Error) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("%s: %s", err.Kind, err.Message)
	}

	return fmt.Sprintf("%s: %s: %v", err.Kind, err.Message, err.Cause)
}

func (err *Error) Unwrap() error { return err.Cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ErrURLRequired is the error returned when a request carries no usable
// URL. It is exported so that request decoding at the HTTP layer can
// report the same failure.
func ErrURLRequired(cause error) *Error {
	return newError(BadRequest, MsgURLRequired, cause)
}
