package validation

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clbanning/mxj/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-product-search/internal/apierror"
)

func TestClassifyContentType(t *testing.T) {
	cases := map[string]BodyFormat{
		"application/xml":                 FormatXML,
		"text/xml; charset=utf-8":         FormatXML,
		"APPLICATION/XML":                 FormatXML,
		"application/atom+xml":            FormatXML,
		"application/json":                FormatJSON,
		"application/json; charset=utf-8": FormatJSON,
		"text/plain":                      FormatJSON,
		"":                                FormatJSON,
	}
	for ct, want := range cases {
		assert.Equal(t, want, ClassifyContentType(ct), "content type %q", ct)
	}
}

func TestDecodeBody_JSON(t *testing.T) {
	fields, err := DecodeBody("application/json", []byte(`{"query":"phone","page":2}`))
	require.NoError(t, err)
	assert.Equal(t, "phone", fields["query"])
	assert.Equal(t, float64(2), fields["page"])

	fields, err = DecodeBody("application/json", []byte("  "))
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestDecodeBody_XML(t *testing.T) {
	body := "<Request>\n  <QUERY>  phone  </QUERY>\n  <Page>2</Page>\n</Request>"
	fields, err := DecodeBody("application/xml", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "phone", fields["query"])
	assert.Equal(t, "2", fields["page"])
}

func TestDecodeBody_XMLAttributes(t *testing.T) {
	body := `<request id="7"><query lang="en">phone</query><Page unit="n">2</Page><tag lang="en"/></request>`
	fields, err := DecodeBody("application/xml", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "phone", fields["query"])
	assert.Equal(t, "2", fields["page"])
	assert.Equal(t, "", fields["tag"])
}

func TestDecodeBody_XMLCaseCollision(t *testing.T) {
	fields, err := DecodeBody("application/xml", []byte("<request><Query>a</Query><query>b</query></request>"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, fields["query"])
}

func TestDecodeBody_XMLLeavesMxjDefaults(t *testing.T) {
	_, err := DecodeBody("application/xml", []byte("<Request><Query>phone</Query></Request>"))
	require.NoError(t, err)

	m, err := mxj.NewMapXml([]byte("<Request><Query>phone</Query></Request>"))
	require.NoError(t, err)
	assert.Contains(t, m, "Request")
}

func TestDecodeBody_XMLRepeatedElement(t *testing.T) {
	fields, err := DecodeBody("text/xml", []byte("<request><query>a</query><query>b</query></request>"))
	require.NoError(t, err)
	_, isString := fields["query"].(string)
	assert.False(t, isString)
}

func TestDecodeBody_Malformed(t *testing.T) {
	for ct, body := range map[string]string{
		"application/json": `{"query":`,
		"application/xml":  "<request><query>phone</request>",
	} {
		_, err := DecodeBody(ct, []byte(body))
		require.Error(t, err, ct)
		ae := apierror.From(err)
		assert.Equal(t, apierror.KindBodyParse, ae.Kind)
		assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
		assert.Equal(t, body, ae.Body)
		assert.NotEmpty(t, ae.Response().Fault)
	}
}

func TestDecodeBody_NotAnObject(t *testing.T) {
	_, err := DecodeBody("application/json", []byte(`["phone"]`))
	require.Error(t, err)
	assert.Equal(t, apierror.KindBodyParse, apierror.From(err).Kind)
}

func TestDecodeBody_TooLarge(t *testing.T) {
	raw := []byte(`{"query":"` + strings.Repeat("a", MaxBodyBytes) + `"}`)
	_, err := DecodeBody("application/json", raw)
	require.Error(t, err)
	ae := apierror.From(err)
	assert.Equal(t, apierror.KindBodyParse, ae.Kind)
	assert.Empty(t, ae.Body)
}

func newTestContext(body, contentType string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func TestReadBody_CachesAndRestores(t *testing.T) {
	c := newTestContext(`{"query":"phone"}`, "application/json")

	first, err := ReadBody(c)
	require.NoError(t, err)
	second, err := ReadBody(c)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	restored, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"query":"phone"}`, string(restored))
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestReadBody_CachesError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/search", failingBody{})

	_, first := ReadBody(c)
	require.Error(t, first)
	_, second := ReadBody(c)
	assert.Same(t, first, second)

	_, err := BindAndValidate(c, New())
	require.Error(t, err)
	ae := apierror.From(err)
	assert.Equal(t, apierror.KindBodyParse, ae.Kind)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
}

func TestBindAndValidate(t *testing.T) {
	v := New()

	req, err := BindAndValidate(newTestContext(`{"query":"phone"}`, "application/json"), v)
	require.NoError(t, err)
	assert.Equal(t, SearchRequest{Query: "phone", Page: 1}, req)

	req, err = BindAndValidate(newTestContext("<request><query>laptop</query><page>3</page></request>", "application/xml"), v)
	require.NoError(t, err)
	assert.Equal(t, SearchRequest{Query: "laptop", Page: 3}, req)

	_, err = BindAndValidate(newTestContext(`{"query":"ph"}`, "application/json"), v)
	requireValidationMessage(t, err, "Query length must be between 3 and 10 characters.")
}
