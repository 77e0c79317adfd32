// Package transport sends requests to the datahub API.
//
// The core package only depends on the Doer interface, so tests may
// swap the HTTP client for an in-memory fake.
package transport
