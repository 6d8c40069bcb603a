package weather

import (
	"errors"
	"net/http"
)

// Kind classifies failures so the HTTP boundary can map them to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUpstreamFetch
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamFetch:
		return "upstream_fetch"
	case KindNoData:
		return "no_data"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status a failure of this kind is reported with.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNoData:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

const (
	MsgMissingCoordinates = "Missing required parameters: lat and lon"
	MsgInvalidCoordinates = "Invalid latitude or longitude values"
	MsgUpstreamFetch      = "Error fetching weather data"
)

// Error is the error type returned by the service and its collaborators.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare sentinels below by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrUpstreamFetch = &Error{Kind: KindUpstreamFetch}
	ErrNoData        = &Error{Kind: KindNoData}
	ErrInternal      = &Error{Kind: KindInternal}
)

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func UpstreamFetch(msg string, err error) error {
	return &Error{Kind: KindUpstreamFetch, Message: msg, Err: err}
}

func NoData(msg string) error {
	return &Error{Kind: KindNoData, Message: msg}
}

// Internal wraps err as an internal failure unless it is already classified.
func Internal(msg string, err error) error {
	var we *Error
	if errors.As(err, &we) {
		return err
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindInternal
}
