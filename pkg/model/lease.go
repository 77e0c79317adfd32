package model

import "time"

// Backend designates the kind of object storage a lease grants access to
type Backend string

const (
	// BackendS3 is any S3-compatible object storage
	BackendS3 Backend = "s3"

	// BackendGCS is Google cloud storage
	BackendGCS Backend = "gcs"

	// BackendLocal is a local or mounted file system, used by on-premises deployments
	BackendLocal Backend = "local"
)

// Credentials granted by a lease
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	SessionToken    string `json:"sessionToken,omitempty"`
	Token           string `json:"token,omitempty"` // OAuth2 bearer token
}

// Lease holds short-lived, segment-scoped upload credentials
type Lease struct {
	Backend      Backend           `json:"backendType"`
	Host         string            `json:"host"`
	Bucket       string            `json:"bucket"`
	Region       string            `json:"region,omitempty"`
	ObjectPrefix string            `json:"objectPrefix"`
	Credentials  Credentials       `json:"credentials"`
	Extra        map[string]string `json:"extra,omitempty"`
	ExpireAt     time.Time         `json:"expireAt"`
}

// Clone returns a deep copy of the lease
func (l Lease) Clone() Lease {
	c := l
	if l.Extra != nil {
		c.Extra = make(map[string]string, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Expired tells if the lease is expired at some time
func (l Lease) Expired(now time.Time) bool {
	return !now.Before(l.ExpireAt)
}

// ObjectKey is the full object key under which some remote path is stored
func (l Lease) ObjectKey(remotePath string) string {
	return l.ObjectPrefix + remotePath
}
