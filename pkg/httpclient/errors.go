package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/tuanpn1312/react-shop/pkg/errors"
)

// errorBody mirrors the error payloads the backend returns: either a plain
// string or a JSON object carrying a message field.
type errorBody struct {
	Message string `json:"message"`
}

// readErrorMessage extracts a human-readable message from a non-2xx response
// body. The body is fully consumed and closed.
func readErrorMessage(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return ""
	}

	var parsed errorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(bodyBytes))
}

// MapCartResponseError translates a non-2xx response from the cart endpoint
// into its domain error. The mapping is applied uniformly to every cart
// operation. The response body is consumed and closed.
func MapCartResponseError(resp *http.Response) error {
	message := readErrorMessage(resp)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidCartOperation("")
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.SessionExpired()
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden("you are not allowed to modify this cart")
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ProductNotFound(message)
	case resp.StatusCode >= 500:
		return apperrors.ServerError(resp.StatusCode, message)
	default:
		return apperrors.UnknownCart(resp.StatusCode, message)
	}
}

// MapTransportError translates a failure where no HTTP response was received
// (connection refused, timeout, DNS failure) into NetworkUnavailable. The
// underlying error stays in the chain so context cancellation remains
// detectable with errors.Is.
func MapTransportError(err error) error {
	return apperrors.NetworkUnavailable(err)
}

// ParseResponseError translates a non-2xx response from a non-cart endpoint
// (catalog, orders, accounts) into an AppError, preserving the backend's
// message where one is present. The response body is consumed and closed.
func ParseResponseError(resp *http.Response, resource string) error {
	message := readErrorMessage(resp)
	if message == "" {
		message = fmt.Sprintf("%s request failed with status %d", resource, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case resp.StatusCode == http.StatusConflict:
		return &apperrors.AppError{
			Code:    "ALREADY_EXISTS",
			Message: message,
			Status:  http.StatusConflict,
			Err:     apperrors.ErrAlreadyExists,
		}
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case resp.StatusCode >= 500:
		return apperrors.ServerError(resp.StatusCode, message)
	default:
		return &apperrors.AppError{
			Code:    "UNEXPECTED_STATUS",
			Message: message,
			Status:  resp.StatusCode,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
