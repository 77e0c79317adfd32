// Copyright © 2018 One Concern

// Package core implements the datahub SDK: datasets under version control,
// their segments, and the upload pipeline which synchronizes local files to them.
//
// A DatasetClient tracks the revision it is checked out at. Listings are returned
// as lazy paged sequences. Mutations require an open draft, and are rejected
// before any network call otherwise.
package core
