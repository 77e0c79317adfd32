package sthree

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

const expiredTokenXML = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>ExpiredToken</Code><Message>The provided token has expired.</Message><RequestId>r1</RequestId></Error>`

// fakeS3 accepts single-part PutObject requests
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	expired bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f.mu.Lock()
	expired := f.expired
	f.mu.Unlock()
	if expired {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, expiredTokenXML)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.objects[r.URL.Path] = string(body)
	f.mu.Unlock()
	w.Header().Set("ETag", `"etag-1"`)
	w.Header().Set("x-amz-version-id", "version-1")
	w.WriteHeader(http.StatusOK)
}

func testLease(host string) model.Lease {
	return model.Lease{
		Backend:      model.BackendS3,
		Host:         host,
		Bucket:       "bucket",
		ObjectPrefix: "ds1/train/",
		Credentials: model.Credentials{
			AccessKeyID:     "AK",
			SecretAccessKey: "SK",
			SessionToken:    "token",
		},
	}
}

func TestConfigForLease(t *testing.T) {
	cfg := configForLease(testLease("minio.local:9000"))
	assert.Equal(t, "https://minio.local:9000", aws.StringValue(cfg.Endpoint))
	assert.Equal(t, defaultRegion, aws.StringValue(cfg.Region))
	assert.True(t, aws.BoolValue(cfg.S3ForcePathStyle))

	creds, err := cfg.Credentials.Get()
	require.NoError(t, err)
	assert.Equal(t, "AK", creds.AccessKeyID)
	assert.Equal(t, "token", creds.SessionToken)

	lease := testLease("")
	lease.Region = "eu-west-1"
	cfg = configForLease(lease)
	assert.Nil(t, cfg.Endpoint)
	assert.Equal(t, "eu-west-1", aws.StringValue(cfg.Region))

	_, err = New(model.Lease{})
	assert.ErrorIs(t, err, status.ErrInvalidResource)
}

func TestPut(t *testing.T) {
	fake := &fakeS3{objects: make(map[string]string)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	lease := testLease(srv.URL)
	uploader, err := New(lease, AWSConfig(configForLease(lease).WithMaxRetries(0)))
	require.NoError(t, err)
	defer func() {
		_ = uploader.Close()
	}()
	assert.Equal(t, "s3@bucket", uploader.String())

	res, err := uploader.Put(context.Background(), lease.ObjectKey("a.png"), strings.NewReader("content"), 7)
	require.NoError(t, err)
	assert.Equal(t, "ds1/train/a.png", res.Key)
	assert.Equal(t, "version-1", res.VersionID)
	assert.Equal(t, "etag-1", res.ETag)
	fake.mu.Lock()
	assert.Equal(t, "content", fake.objects["/bucket/ds1/train/a.png"])
	fake.mu.Unlock()

	fake.mu.Lock()
	fake.expired = true
	fake.mu.Unlock()
	_, err = uploader.Put(context.Background(), lease.ObjectKey("b.png"), strings.NewReader("content"), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrUnauthorized)
}
