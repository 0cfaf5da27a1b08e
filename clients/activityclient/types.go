package activityclient

import (
	"encoding/json"
	"fmt"
)

// messageResponse is the body of every signup/unregister response.
type messageResponse struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	// Detail is the server-provided explanation, empty when the response
	// carried no string "detail" field.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activities API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("activities API returned status %d: %s", e.StatusCode, e.Detail)
}

// DetailOr returns the server detail, or fallback when there is none.
func (e *APIError) DetailOr(fallback string) string {
	if e.Detail == "" {
		return fallback
	}
	return e.Detail
}

// newAPIError builds an APIError from a response body. Bodies that are not
// JSON, or whose detail is not a string (e.g. validation error lists), yield
// an empty Detail.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(resp.Detail, &detail); err == nil {
		apiErr.Detail = detail
	}
	return apiErr
}
