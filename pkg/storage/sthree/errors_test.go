package sthree

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/stretchr/testify/assert"

	"github.com/oneconcern/datahub/pkg/storage/status"
)

func TestToSentinelErrors(t *testing.T) {
	origin := errors.New("origin")
	for _, toPin := range []struct {
		Name     string
		Err      error
		Sentinel error
	}{
		{Name: "expired token", Err: awserr.NewRequestFailure(awserr.New("ExpiredToken", "expired", nil), 400, "r1"), Sentinel: status.ErrUnauthorized},
		{Name: "bad signature", Err: awserr.NewRequestFailure(awserr.New("SignatureDoesNotMatch", "sig", nil), 403, "r2"), Sentinel: status.ErrUnauthorized},
		{Name: "unauthorized", Err: awserr.NewRequestFailure(awserr.New("Unauthorized", "no", nil), 401, "r3"), Sentinel: status.ErrUnauthorized},
		{Name: "forbidden", Err: awserr.NewRequestFailure(awserr.New("AllAccessDisabled", "no", nil), 403, "r4"), Sentinel: status.ErrForbidden},
		{Name: "no bucket", Err: awserr.NewRequestFailure(awserr.New("NoSuchBucket", "no", nil), 404, "r5"), Sentinel: status.ErrNotExists},
		{Name: "bucket name", Err: awserr.NewRequestFailure(awserr.New("InvalidBucketName", "no", nil), 400, "r6"), Sentinel: status.ErrInvalidResource},
		{Name: "server", Err: awserr.NewRequestFailure(awserr.New("InternalError", "no", nil), 500, "r7"), Sentinel: status.ErrStorageAPI},
		{Name: "multipart", Err: awserr.New("MultipartUpload", "upload multipart failed", awserr.NewRequestFailure(awserr.New("ExpiredToken", "expired", nil), 400, "r8")), Sentinel: status.ErrUnauthorized},
		{Name: "credentials", Err: awserr.New("NoCredentialProviders", "no creds", nil), Sentinel: status.ErrUnauthorized},
	} {
		fixture := toPin
		t.Run(fixture.Name, func(t *testing.T) {
			err := toSentinelErrors(fixture.Err)
			assert.ErrorIs(t, err, fixture.Sentinel)
		})
	}

	assert.NoError(t, toSentinelErrors(nil))
	assert.Equal(t, origin, toSentinelErrors(origin))
	unmapped := awserr.New("RequestError", "send", origin)
	assert.Equal(t, unmapped, toSentinelErrors(unmapped))
}
