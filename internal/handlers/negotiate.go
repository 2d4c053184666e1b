package handlers

import (
	"encoding/xml"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	json "github.com/goccy/go-json"

	"github.com/imrishuroy/go-product-search/internal/products"
)

// Format is a response representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
)

// searchResultXML wraps a product list under the <response> root.
type searchResultXML struct {
	XMLName  xml.Name           `xml:"response"`
	Products []products.Product `xml:"product"`
}

// NegotiateFormat picks XML only when the Accept header asks for it; everything
// else, including no preference, gets JSON.
func NegotiateFormat(c *gin.Context) Format {
	switch c.NegotiateFormat(binding.MIMEJSON, binding.MIMEXML, binding.MIMEXML2) {
	case binding.MIMEXML, binding.MIMEXML2:
		return FormatXML
	default:
		return FormatJSON
	}
}

// Serialize renders a success or error payload in the given format.
func Serialize(f Format, payload interface{}) (contentType string, body []byte, err error) {
	if f == FormatXML {
		if items, ok := payload.([]products.Product); ok {
			payload = searchResultXML{Products: items}
		}
		body, err = xml.Marshal(payload)
		if err != nil {
			return "", nil, err
		}
		return contentTypeXML, append([]byte(xml.Header), body...), nil
	}
	body, err = json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return contentTypeJSON, body, nil
}
