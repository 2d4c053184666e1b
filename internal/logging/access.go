package logging

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Entry types.
const (
	TypeMessageIn  = "messageIn"
	TypeMessageOut = "messageOut"
)

// FaultPlaceholder is logged for error responses that carry no fault detail.
const FaultPlaceholder = "No fault details available"

// AccessLogger records every inbound request body and every serialized response.
// It never alters the payloads and never fails the request.
type AccessLogger struct {
	log zerolog.Logger
	now func() time.Time
}

func NewAccessLogger(log zerolog.Logger) *AccessLogger {
	return &AccessLogger{log: log, now: time.Now}
}

// MessageIn logs an inbound request.
func (a *AccessLogger) MessageIn(requestID, method, path string, body []byte) {
	ev := a.log.Info().Str("type", TypeMessageIn)
	ev = withBody(ev, body)
	ev.Str("method", method).
		Str("path", path).
		Str("dateTime", a.now().UTC().Format(time.RFC3339Nano)).
		Str("request_id", requestID).
		Send()
}

// MessageOut logs a serialized response. For codes >= 400 the fault is always
// present, falling back to FaultPlaceholder.
func (a *AccessLogger) MessageOut(requestID, format string, code int, body []byte, fault string) {
	ev := a.log.Info().Str("type", TypeMessageOut)
	ev = withBody(ev, body)
	ev = ev.Str("format", format).
		Int("code", code).
		Str("dateTime", a.now().UTC().Format(time.RFC3339Nano)).
		Str("request_id", requestID)
	if code >= 400 {
		if fault == "" {
			fault = FaultPlaceholder
		}
		ev = ev.Str("fault", fault)
	}
	ev.Send()
}

func withBody(ev *zerolog.Event, body []byte) *zerolog.Event {
	if len(body) > 0 && json.Valid(body) {
		return ev.RawJSON("body", body)
	}
	return ev.Str("body", string(body))
}
