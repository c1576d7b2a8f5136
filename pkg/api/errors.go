package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrBaseURLRequired = goerr.New("backend base URL is required")
	ErrTransport       = goerr.New("backend request failed")
	ErrDecode          = goerr.New("failed to decode backend response")
	ErrUnauthorized    = goerr.New("backend rejected credentials")
	ErrInvalidInput    = goerr.New("invalid request input")
)

const (
	MethodKey = "method"
	PathKey   = "path"
	StatusKey = "status"
	IDKey     = "id"
)

// Error is a non-2xx backend response.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the raw "detail" member of the response body, if any.
	Detail json.RawMessage
	Body   []byte
}

func (e *Error) Error() string {
	msg := e.DetailText()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// DetailValue returns the decoded detail, or nil when the body had none.
func (e *Error) DetailValue() any {
	if len(e.Detail) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(e.Detail, &out); err != nil {
		return nil
	}
	return out
}

// DetailText renders the detail as text. Strings are returned verbatim,
// other values as compact JSON.
func (e *Error) DetailText() string {
	switch v := e.DetailValue().(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, e.Detail); err != nil {
			return string(e.Detail)
		}
		return buf.String()
	}
}

func newError(method, path string, resp *resty.Response) *Error {
	e := &Error{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil && len(body.Detail) > 0 && string(body.Detail) != "null" {
		e.Detail = body.Detail
	}
	return e
}
