// Copyright © 2018 One Concern

// Package storage writes uploaded objects to the storage granted by a lease.
//
// This package supports the following backends:
//   - S3-compatible object storage (sthree)
//   - GCS (gcs)
//   - local or mounted file system (localfs)
package storage
