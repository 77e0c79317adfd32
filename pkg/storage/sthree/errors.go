package sthree

import (
	"github.com/aws/aws-sdk-go/aws/awserr"

	"github.com/oneconcern/datahub/pkg/storage/status"
)

// error codes reporting rejected or expired lease credentials
var credentialCodes = map[string]bool{
	"ExpiredToken":          true,
	"InvalidToken":          true,
	"TokenRefreshRequired":  true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"AccessDenied":          true,
	"NoCredentialProviders": true,
}

func apiErrors(err awserr.RequestFailure) error {
	// handle S3 API errors
	// https://docs.aws.amazon.com/sdk-for-go/api/aws/awserr/#RequestFailure
	if credentialCodes[err.Code()] {
		return status.ErrUnauthorized.Wrap(err)
	}
	switch err.StatusCode() {
	case 400:
		if err.Code() == "InvalidBucketName" {
			return status.ErrInvalidResource.Wrap(err)
		}
		return status.ErrStorageAPI.Wrap(err)
	case 401:
		return status.ErrUnauthorized.Wrap(err)
	case 403:
		return status.ErrForbidden.Wrap(err)
	case 404:
		return status.ErrNotExists.Wrap(err)
	default:
		return status.ErrStorageAPI.Wrap(err)
	}
}

func toSentinelErrors(err error) error {
	// return sentinel errors defined by the status package
	// see: https://docs.aws.amazon.com/AmazonS3/latest/API/ErrorResponses.html#ErrorCodeList
	if err == nil {
		return nil
	}
	if mapped, ok := mapAWSError(err); ok {
		return mapped
	}
	return err
}

// mapAWSError digs into the original errors carried by AWS errors, such as a multipart upload failure
func mapAWSError(err error) (error, bool) {
	switch awsErr := err.(type) {
	case awserr.RequestFailure:
		return apiErrors(awsErr), true
	case awserr.Error:
		if credentialCodes[awsErr.Code()] {
			return status.ErrUnauthorized.Wrap(err), true
		}
		if orig := awsErr.OrigErr(); orig != nil {
			return mapAWSError(orig)
		}
	}
	return nil, false
}
