package handlers

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-search/internal/apierror"
	"github.com/imrishuroy/go-product-search/internal/logging"
)

// healthResponse is the /health body; typed so it also renders as XML.
type healthResponse struct {
	XMLName xml.Name `json:"-" xml:"response"`
	Status  string   `json:"status" xml:"status"`
}

// responder is the single outbound step for every route: negotiate, serialize,
// write, then log the messageOut entry for what was written.
type responder struct {
	log    zerolog.Logger
	access *logging.AccessLogger
}

func newResponder(cfg HandlerConfig) *responder {
	return &responder{log: cfg.Logger, access: cfg.AccessLog}
}

// respond writes payload in the given format and logs it.
func (r *responder) respond(c *gin.Context, format Format, status int, payload interface{}, fault string) {
	contentType, body, err := Serialize(format, payload)
	if err != nil {
		r.log.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg("failed to serialize response")
		status = http.StatusInternalServerError
		format = FormatJSON
		fault = err.Error()
		contentType, body, _ = Serialize(FormatJSON, apierror.ErrorResponse{
			Code:    status,
			Message: apierror.MsgInternal,
			Fault:   fault,
		})
	}
	c.Data(status, contentType, body)
	r.access.MessageOut(requestIDFrom(c), string(format), status, body, fault)
}

// negotiated is respond with the format taken from the Accept header.
func (r *responder) negotiated(c *gin.Context, status int, payload interface{}) {
	r.respond(c, NegotiateFormat(c), status, payload, "")
}

// routeError replies with a bare ErrorResponse for routing failures.
func (r *responder) routeError(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r.negotiated(c, status, apierror.ErrorResponse{Code: status, Message: message})
	}
}
