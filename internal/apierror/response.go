package apierror

import "encoding/xml"

// ErrorResponse is the uniform error body returned to clients.
type ErrorResponse struct {
	XMLName xml.Name `json:"-" xml:"response"`
	Code    int      `json:"code" xml:"code"`
	Message string   `json:"message" xml:"message"`
	Fault   string   `json:"fault,omitempty" xml:"fault,omitempty"`
	Body    string   `json:"body,omitempty" xml:"body,omitempty"`
}

// Response shapes the error for the wire.
func (e *Error) Response() ErrorResponse {
	resp := ErrorResponse{
		Code:    e.HTTPStatus,
		Message: e.Message,
		Body:    e.Body,
	}
	if e.Detail != nil && e.HTTPStatus >= 400 {
		resp.Fault = e.Detail.Error()
	}
	return resp
}
