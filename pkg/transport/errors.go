package transport

import (
	"fmt"
	"net/http"

	"github.com/oneconcern/datahub/pkg/transport/status"
)

const maxErrorMessage = 512

// ResponseError is returned for any non-2xx response.
//
// It matches status.ErrResponse, plus the sentinel corresponding to its status code.
type ResponseError struct {
	Method     string `json:"-"`
	Path       string `json:"-"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func newResponseError(method, p string, code int, payload []byte) *ResponseError {
	e := &ResponseError{}
	if err := json.Unmarshal(payload, e); err != nil || (e.Code == "" && e.Message == "") {
		msg := string(payload)
		if len(msg) > maxErrorMessage {
			msg = msg[:maxErrorMessage]
		}
		e.Message = msg
	}
	e.Method = method
	e.Path = p
	e.StatusCode = code
	return e
}

func (e *ResponseError) Error() string {
	text := http.StatusText(e.StatusCode)
	if e.Code != "" {
		text = e.Code
	}
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, text)
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, text, e.Message)
}

// Is the error some status sentinel?
func (e *ResponseError) Is(target error) bool {
	switch target {
	case status.ErrResponse:
		return true
	case status.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case status.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case status.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case status.ErrConflict:
		return e.StatusCode == http.StatusConflict
	default:
		return false
	}
}
