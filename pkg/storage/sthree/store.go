// Copyright © 2018 One Concern

// Package sthree uploads objects to S3-compatible storage with the credentials of a lease.
package sthree

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

const defaultRegion = "us-east-1"

// Option for the S3 uploader
type Option func(*s3FS)

// AWSConfig overrides the AWS configuration derived from the lease, e.g. to point to a local S3 emulator
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// PartSize sets the size of the parts of a multipart upload
func PartSize(size int64) Option {
	return func(fs *s3FS) {
		if size >= s3manager.MinUploadPartSize {
			fs.partSize = size
		}
	}
}

// Logger for this uploader
func Logger(l *zap.Logger) Option {
	return func(fs *s3FS) {
		if l != nil {
			fs.l = l
		}
	}
}

// New S3 uploader, with the static credentials granted by a lease
func New(lease model.Lease, options ...Option) (storage.Uploader, error) {
	if lease.Bucket == "" {
		return nil, status.ErrInvalidResource.WrapMessage("lease does not specify a bucket")
	}
	fs := &s3FS{
		bucket:   lease.Bucket,
		partSize: s3manager.DefaultUploadPartSize,
		l:        zap.NewNop(),
	}
	for _, apply := range options {
		apply(fs)
	}

	if fs.awsConfig == nil {
		fs.awsConfig = configForLease(lease)
	}
	sess, err := session.NewSession(fs.awsConfig)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	fs.s3 = s3.New(sess)
	fs.uploader = s3manager.NewUploaderWithClient(fs.s3, func(u *s3manager.Uploader) {
		u.PartSize = fs.partSize
	})
	return fs, nil
}

func configForLease(lease model.Lease) *aws.Config {
	region := lease.Region
	if region == "" {
		region = defaultRegion
	}
	cfg := aws.NewConfig().
		WithRegion(region).
		WithCredentials(credentials.NewStaticCredentials(
			lease.Credentials.AccessKeyID,
			lease.Credentials.SecretAccessKey,
			lease.Credentials.SessionToken,
		))
	if lease.Host != "" {
		endpoint := lease.Host
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	return cfg
}

type s3FS struct {
	bucket    string
	partSize  int64
	awsConfig *aws.Config
	s3        *s3.S3
	uploader  *s3manager.Uploader
	l         *zap.Logger
}

func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader, size int64) (storage.PutResult, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   rdr,
	})
	if err != nil {
		return storage.PutResult{}, toSentinelErrors(err)
	}
	s.l.Debug("uploaded object", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int64("size", size))
	return storage.PutResult{
		Key:       key,
		VersionID: aws.StringValue(out.VersionID),
		ETag:      strings.Trim(aws.StringValue(out.ETag), `"`),
	}, nil
}

func (s *s3FS) String() string {
	return fmt.Sprintf("s3@%s", s.bucket)
}

func (s *s3FS) Close() error {
	return nil
}
