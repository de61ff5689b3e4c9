package routing

import "fmt"

// Code identifies a routing failure class. Backend status codes are carried
// through verbatim; transport and precondition failures use the synthetic
// codes below.
type Code string

const (
	// CodeInsufficientWaypoints is a local precondition violation: fewer
	// than two waypoints were supplied. No network call is made.
	CodeInsufficientWaypoints Code = "InsufficientWaypoints"
	// CodeServerUnavailable covers transport failures: network errors,
	// timeouts and non-2xx HTTP responses.
	CodeServerUnavailable Code = "ServerUnavailable"

	// Backend status codes, mirrored from the OSRM response envelope.
	CodeNoRoute      Code = "NoRoute"
	CodeNoSegment    Code = "NoSegment"
	CodeTooBig       Code = "TooBig"
	CodeInvalidQuery Code = "InvalidQuery"
	CodeInvalidValue Code = "InvalidValue"
)

// userMessages maps failure codes to the sentence shown to the user.
// Unrecognized backend codes fall back to a templated message.
var userMessages = map[Code]string{
	CodeInsufficientWaypoints: "At least two waypoints are required to calculate a route.",
	CodeServerUnavailable:     "The routing server could not be reached. Please try again later.",
	CodeNoRoute:               "No route could be found between these points.",
	CodeNoSegment:             "One of the waypoints could not be matched to the road network.",
	CodeTooBig:                "The requested route is too long to calculate.",
	CodeInvalidQuery:          "The routing request was not valid.",
	CodeInvalidValue:          "The routing request contained an invalid value.",
}

// Error is a typed routing failure. Message is the user-facing sentence;
// Detail carries diagnostic context (HTTP status, underlying error) intended
// for logs, never for display.
type Error struct {
	Code    Code
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an Error for a known or backend-reported code.
func NewError(code Code, detail string) *Error {
	msg, ok := userMessages[code]
	if !ok {
		msg = fmt.Sprintf("Routing failed: %s.", code)
	}
	return &Error{Code: code, Message: msg, Detail: detail}
}
