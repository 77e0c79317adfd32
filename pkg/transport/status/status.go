// Package status declares error constants returned by
// implementations of the transport Doer interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/transport and its consumers.
package status

import "github.com/oneconcern/datahub/pkg/errors"

var (
	// ErrResponse matches any non-2xx response from the API server
	ErrResponse = errors.New("API response error")

	// ErrUnauthorized indicates an authentication failure: missing, invalid or expired credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the API forbids access to the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates that the API did not find the target resource
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates that the resource exists already
	ErrConflict = errors.New("conflict")

	// ErrInvalidRequest indicates that the request could not be built or sent
	ErrInvalidRequest = errors.New("invalid request")
)
