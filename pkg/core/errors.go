package core

import (
	"fmt"

	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/errors"
	storagestatus "github.com/oneconcern/datahub/pkg/storage/status"
	transportstatus "github.com/oneconcern/datahub/pkg/transport/status"
)

// UploadError is returned when an upload pipeline is aborted.
//
// Items synchronized before the failure remain on the draft: the upload may be
// resumed against the same draft, skipping what is already uploaded.
type UploadError struct {
	Err         error
	DraftNumber uint32
	Segment     string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to segment %q aborted on draft #%d: %v", e.Segment, e.DraftNumber, e.Err)
}

// Unwrap the original error
func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsAuthFailure tells if an error reports rejected or expired credentials,
// either from the API or from the storage granted by a lease
func IsAuthFailure(err error) bool {
	return errors.Is(err, transportstatus.ErrUnauthorized) || errors.Is(err, storagestatus.ErrUnauthorized)
}

// translateError maps transport errors to the SDK error taxonomy
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, transportstatus.ErrNotFound):
		return status.ErrResourceNotExist.Wrap(err)
	case errors.Is(err, transportstatus.ErrConflict):
		return status.ErrNameConflict.Wrap(err)
	default:
		return err
	}
}
