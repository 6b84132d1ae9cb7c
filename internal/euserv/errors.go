package euserv

import "errors"

// Kind classifies a control panel failure.
type Kind string

// Error kinds returned by the client. Callers match on them with the IsXxx
// helpers below instead of inspecting messages.
const (
	KindParse     Kind = "parse_error"     // body is not a JSON object
	KindHTTP      Kind = "http_error"      // transport status is not 200
	KindBusiness  Kind = "business_error"  // result code is not the success sentinel
	KindSession   Kind = "session_error"   // no session id in the first response
	KindState     Kind = "state_error"     // operation called out of order
	KindTransport Kind = "transport_error" // request could not be completed
)

// ErrInvalidState is wrapped by KindState errors.
var ErrInvalidState = errors.New("invalid client state")

// Error is a typed control panel error carrying the step it happened in.
type Error struct {
	Kind       Kind
	Step       Step
	Message    string
	StatusCode int   // HTTP status, 0 when no response was received
	Err        error // underlying error (may be nil)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Step != "" {
		msg = string(e.Step) + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsParseError reports whether err is a malformed-body failure.
func IsParseError(err error) bool { return KindOf(err) == KindParse }

// IsHTTPError reports whether err is a non-success transport status.
func IsHTTPError(err error) bool { return KindOf(err) == KindHTTP }

// IsBusinessError reports whether the API rejected the call in its payload.
func IsBusinessError(err error) bool { return KindOf(err) == KindBusiness }

// IsSessionError reports whether no session id could be obtained.
func IsSessionError(err error) bool { return KindOf(err) == KindSession }

// IsStateError reports whether an operation was called out of order.
func IsStateError(err error) bool { return KindOf(err) == KindState }

// IsTransportError reports whether the request never produced a response.
func IsTransportError(err error) bool { return KindOf(err) == KindTransport }
