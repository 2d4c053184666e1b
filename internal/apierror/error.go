package apierror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies where in the search pipeline an error originated.
type Kind string

const (
	KindBodyParse         Kind = "BODY_PARSE"
	KindValidation        Kind = "VALIDATION"
	KindUpstreamTransport Kind = "UPSTREAM_TRANSPORT"
	KindUpstreamFormat    Kind = "UPSTREAM_FORMAT"
	KindInternal          Kind = "INTERNAL"
)

// User-facing messages. Diagnostic detail never goes here, only into Fault.
const (
	MsgInvalidBody       = "Invalid request body"
	MsgUpstreamTransport = "Failed to fetch products from external API"
	MsgUpstreamFormat    = "Failed to parse response from external API"
	MsgInternal          = "Internal server error"
)

// Error is the tagged error variant produced at every failure point of the pipeline.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Detail     error  // diagnostic cause, surfaced as fault
	Body       string // raw inbound payload, BodyParse only
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Detail }

// BodyParse reports a malformed inbound payload.
func BodyParse(raw []byte, cause error) *Error {
	return &Error{
		Kind:       KindBodyParse,
		HTTPStatus: http.StatusBadRequest,
		Message:    MsgInvalidBody,
		Detail:     errors.WithStack(cause),
		Body:       string(raw),
	}
}

// Validation reports field constraint violations; message is already joined.
func Validation(message string) *Error {
	return &Error{
		Kind:       KindValidation,
		HTTPStatus: http.StatusBadRequest,
		Message:    message,
	}
}

// UpstreamTransport reports a network failure talking to the product API.
func UpstreamTransport(cause error) *Error {
	return &Error{
		Kind:       KindUpstreamTransport,
		HTTPStatus: http.StatusInternalServerError,
		Message:    MsgUpstreamTransport,
		Detail:     errors.WithStack(cause),
	}
}

// UpstreamFormat reports an unparseable or unexpected product API response.
func UpstreamFormat(cause error) *Error {
	return &Error{
		Kind:       KindUpstreamFormat,
		HTTPStatus: http.StatusInternalServerError,
		Message:    MsgUpstreamFormat,
		Detail:     errors.WithStack(cause),
	}
}

// From converts any error into the tagged variant. Unknown errors become 500s.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Kind:       KindInternal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    MsgInternal,
		Detail:     errors.WithStack(err),
	}
}

// Stack returns the detail formatted with its stack trace, for logs.
func (e *Error) Stack() string {
	if e.Detail == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Detail)
}
