// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/datahub/pkg/errors"
)

var (
	// ErrStatus indicates that an operation is attempted against the wrong revision state,
	// e.g. mutating a dataset without an open draft
	ErrStatus = errors.New("revision status error")

	// ErrRequiresDraft is returned when an operation requires an open draft
	ErrRequiresDraft = ErrStatus.WrapMessage("operation requires an open draft")

	// ErrRequiresCommit is returned when an operation requires a resolved commit
	ErrRequiresCommit = ErrStatus.WrapMessage("operation requires a commit, not an open draft")

	// ErrResourceNotExist indicates that a named dataset, branch, draft, commit, tag or segment does not resolve
	ErrResourceNotExist = errors.New("resource does not exist")

	// ErrNameConflict indicates that a segment, branch, tag or dataset with that name exists already
	ErrNameConflict = errors.New("name conflict")

	// ErrFrame indicates an inconsistent usage of frame identifiers within a fusion segment
	ErrFrame = errors.New("inconsistent frame")

	// ErrIndexOutOfRange is returned when indexing a paged sequence beyond its length
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSequenceMutated indicates that a paged collection reported inconsistent counts across pages
	ErrSequenceMutated = errors.New("remote collection changed while being listed")

	// ErrInterrupted signals that the current background processing has been interrupted
	ErrInterrupted = errors.New("background processing interrupted")

	// ErrUnexpectedResponse indicates a response from the server that the client does not understand
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrInvalidParams indicates some invalid or missing input parameter
	ErrInvalidParams = errors.New("invalid parameters")
)
