package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-search/internal/apierror"
	"github.com/imrishuroy/go-product-search/internal/logging"
	"github.com/imrishuroy/go-product-search/internal/products"
	"github.com/imrishuroy/go-product-search/internal/validation"
)

const metricsTimeout = 3 * time.Second

// Search outcomes reported to metrics.
const (
	OutcomeSuccess           = "success"
	OutcomeBodyParse         = "body_parse_error"
	OutcomeValidation        = "validation_error"
	OutcomeUpstreamTransport = "upstream_transport_error"
	OutcomeUpstreamFormat    = "upstream_format_error"
	OutcomeInternal          = "internal_error"
)

// MetricsRecorder receives one call per finished search.
type MetricsRecorder interface {
	RecordSearch(ctx context.Context, outcome string, upstreamLatency time.Duration) error
}

// HandlerConfig groups dependencies for the search handler.
type HandlerConfig struct {
	Searcher  products.Searcher
	AccessLog *logging.AccessLogger
	Logger    zerolog.Logger
	Metrics   MetricsRecorder // optional
}

type searchHandler struct {
	*responder
	cfg HandlerConfig
}

func newSearchHandler(cfg HandlerConfig) *searchHandler {
	return &searchHandler{responder: newResponder(cfg), cfg: cfg}
}

// RegisterSearchRoutes registers POST /search.
func RegisterSearchRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	h := newSearchHandler(cfg)

	r.POST("/search", func(c *gin.Context) {
		ctx := c.Request.Context()
		format := NegotiateFormat(c)

		req, err := validation.BindAndValidate(c, v)
		if err != nil {
			h.fail(c, format, err, 0)
			return
		}

		start := time.Now()
		items, err := cfg.Searcher.Search(ctx, req.Query, req.Page)
		latency := time.Since(start)
		if err != nil {
			h.fail(c, format, err, latency)
			return
		}

		h.respond(c, format, http.StatusOK, products.Transform(items), "")
		h.record(OutcomeSuccess, latency)
	})
}

// fail logs the error with its detail and replies with the shaped ErrorResponse.
func (h *searchHandler) fail(c *gin.Context, format Format, err error, latency time.Duration) {
	ae := apierror.From(err)
	resp := ae.Response()

	ev := h.cfg.Logger.Debug()
	if ae.HTTPStatus >= http.StatusInternalServerError {
		ev = h.cfg.Logger.Error().Str("stack", ae.Stack())
	}
	ev.Str("request_id", requestIDFrom(c)).
		Str("kind", string(ae.Kind)).
		Int("status_code", ae.HTTPStatus).
		Str("message", ae.Message).
		Str("fault", resp.Fault).
		Msg("search failed")

	h.respond(c, format, ae.HTTPStatus, resp, resp.Fault)
	h.record(outcomeFor(ae.Kind), latency)
}

func (h *searchHandler) record(outcome string, latency time.Duration) {
	if h.cfg.Metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsTimeout)
		defer cancel()
		if err := h.cfg.Metrics.RecordSearch(ctx, outcome, latency); err != nil {
			h.cfg.Logger.Warn().Err(err).Str("outcome", outcome).Msg("failed to publish search metrics")
		}
	}()
}

func outcomeFor(k apierror.Kind) string {
	switch k {
	case apierror.KindBodyParse:
		return OutcomeBodyParse
	case apierror.KindValidation:
		return OutcomeValidation
	case apierror.KindUpstreamTransport:
		return OutcomeUpstreamTransport
	case apierror.KindUpstreamFormat:
		return OutcomeUpstreamFormat
	default:
		return OutcomeInternal
	}
}
