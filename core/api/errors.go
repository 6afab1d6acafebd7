package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/rpc/releases"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the release API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is makes every APIError a transport error.
func (e *APIError) Is(target error) bool {
	return target == errs.ErrTransport
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsUnprocessable(err error) bool {
	return hasStatus(err, http.StatusUnprocessableEntity)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func parseAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var reply releases.ErrorReply
	if json.Unmarshal(body, &reply) == nil && reply.Message != "" {
		apiErr.Message = reply.Message
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
