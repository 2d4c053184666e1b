package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-search/internal/logging"
	"github.com/imrishuroy/go-product-search/internal/validation"
)

const (
	headerRequestID = "X-Request-Id"
	ctxRequestID    = "request_id"
)

// RequestID reuses the caller's X-Request-Id or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// LogMessageIn writes a messageIn entry for every inbound request before any
// handler decodes the body. A body read failure is logged here and left cached
// for the handler, which answers it with a BodyParse error.
func LogMessageIn(a *logging.AccessLogger, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := validation.ReadBody(c)
		if err != nil {
			log.Warn().Err(err).Str("request_id", requestIDFrom(c)).Msg("failed to read request body")
		}
		a.MessageIn(requestIDFrom(c), c.Request.Method, c.Request.URL.Path, body)
		c.Next()
	}
}
