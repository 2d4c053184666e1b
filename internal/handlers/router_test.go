package handlers

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-product-search/internal/apierror"
	"github.com/imrishuroy/go-product-search/internal/logging"
)

func (env *testEnv) serve(method, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	env := setup(t, http.StatusOK, twoProducts)

	rr := env.serve(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	out := env.logEntries(t, logging.TypeMessageOut)
	require.Len(t, out, 1)
	assert.Equal(t, float64(http.StatusOK), out[0]["code"])
	assert.NotContains(t, out[0], "fault")
}

func TestMethodNotAllowed(t *testing.T) {
	env := setup(t, http.StatusOK, twoProducts)

	rr := env.serve(http.MethodGet, "/search", "")

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	resp := decodeError(t, rr)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, "Method not allowed", resp.Message)

	out := env.logEntries(t, logging.TypeMessageOut)
	require.Len(t, out, 1)
	assert.Equal(t, float64(http.StatusMethodNotAllowed), out[0]["code"])
	assert.Equal(t, logging.FaultPlaceholder, out[0]["fault"])
	assert.Nil(t, env.upstream)
}

func TestNotFound(t *testing.T) {
	env := setup(t, http.StatusOK, twoProducts)

	rr := env.serve(http.MethodPost, "/nope", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Not found", resp.Message)

	out := env.logEntries(t, logging.TypeMessageOut)
	require.Len(t, out, 1)
	assert.Equal(t, float64(http.StatusNotFound), out[0]["code"])
	assert.Equal(t, logging.FaultPlaceholder, out[0]["fault"])
}

func TestNotFound_XML(t *testing.T) {
	env := setup(t, http.StatusOK, twoProducts)

	rr := env.serve(http.MethodGet, "/nope", "application/xml")

	require.Equal(t, http.StatusNotFound, rr.Code)
	var resp apierror.ErrorResponse
	require.NoError(t, xml.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "response", resp.XMLName.Local)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
