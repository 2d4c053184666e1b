package validation

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"

	"github.com/clbanning/mxj/v2"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-product-search/internal/apierror"
)

// MaxBodyBytes is the largest request body accepted.
const MaxBodyBytes = 1 << 20

const (
	rawBodyKey    = "validation.rawBody"
	rawBodyErrKey = "validation.rawBodyErr"
)

// mxj's default key markers for attributes and element text.
const (
	xmlAttrPrefix = "-"
	xmlTextKey    = "#text"
)

// BodyFormat is the wire format of an inbound body.
type BodyFormat int

const (
	FormatJSON BodyFormat = iota
	FormatXML
)

// ClassifyContentType maps a Content-Type header to a body format. Anything
// that is not XML is treated as JSON.
func ClassifyContentType(contentType string) BodyFormat {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mediaType = strings.ToLower(mediaType)
	switch {
	case mediaType == "application/xml", mediaType == "text/xml", strings.HasSuffix(mediaType, "+xml"):
		return FormatXML
	default:
		return FormatJSON
	}
}

// ReadBody reads the request body once, up to MaxBodyBytes+1 bytes, caches it
// on the context and restores c.Request.Body for later readers. A read failure
// is cached too, so every caller sees the same error.
func ReadBody(c *gin.Context) ([]byte, error) {
	if v, ok := c.Get(rawBodyErrKey); ok {
		return nil, v.(error)
	}
	if v, ok := c.Get(rawBodyKey); ok {
		return v.([]byte), nil
	}
	if c.Request.Body == nil {
		c.Set(rawBodyKey, []byte{})
		return []byte{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes+1))
	if err != nil {
		err = fmt.Errorf("read body: %w", err)
		c.Set(rawBodyErrKey, err)
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	c.Set(rawBodyKey, raw)
	return raw, nil
}

// DecodeBody decodes raw into a field map according to the content type.
// Any failure is an apierror BodyParse error carrying the raw payload.
func DecodeBody(contentType string, raw []byte) (map[string]interface{}, error) {
	if len(raw) > MaxBodyBytes {
		return nil, apierror.BodyParse(nil, fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes))
	}

	var (
		fields map[string]interface{}
		err    error
	)
	switch ClassifyContentType(contentType) {
	case FormatXML:
		fields, err = decodeXML(raw)
	default:
		fields, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, apierror.BodyParse(raw, err)
	}
	return fields, nil
}

func decodeJSON(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]interface{}{}, nil
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	fields, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.New("request body must be a JSON object")
	}
	return fields, nil
}

// decodeXML lowercases tag names, trims text and keeps single elements
// unwrapped. The document root is unwrapped so its children become fields.
func decodeXML(raw []byte) (map[string]interface{}, error) {
	m, err := mxj.NewMapXml(raw)
	if err != nil {
		return nil, err
	}
	fields, _ := normalizeXML(map[string]interface{}(m)).(map[string]interface{})
	if len(fields) == 1 {
		for root, v := range fields {
			if inner, ok := v.(map[string]interface{}); ok {
				return inner, nil
			}
			return map[string]interface{}{root: v}, nil
		}
	}
	return fields, nil
}

// normalizeXML lowercases keys and collapses elements that carry only
// attributes and text down to their text. Keys that collide after lowercasing
// are merged into a list, like a repeated element.
func normalizeXML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if text, ok := elementText(t); ok {
			return text
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			key := strings.ToLower(k)
			child := normalizeXML(t[k])
			prev, ok := out[key]
			if !ok {
				out[key] = child
				continue
			}
			if list, isList := prev.([]interface{}); isList {
				out[key] = append(list, child)
			} else {
				out[key] = []interface{}{prev, child}
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeXML(e)
		}
		return out
	default:
		return v
	}
}

// elementText reports the text of an element whose map holds nothing but
// attributes and, optionally, "#text".
func elementText(m map[string]interface{}) (interface{}, bool) {
	if len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if k != xmlTextKey && !strings.HasPrefix(k, xmlAttrPrefix) {
			return nil, false
		}
	}
	if text, ok := m[xmlTextKey]; ok {
		return text, true
	}
	return "", true
}

// BindAndValidate reads, decodes and validates the search body.
func BindAndValidate(c *gin.Context, v *validatorv10.Validate) (SearchRequest, error) {
	raw, err := ReadBody(c)
	if err != nil {
		return SearchRequest{}, apierror.BodyParse(nil, err)
	}
	fields, err := DecodeBody(c.GetHeader("Content-Type"), raw)
	if err != nil {
		return SearchRequest{}, err
	}
	return Validate(v, InputFromFields(fields))
}
