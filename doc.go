/*
Package datahub provides an SDK and CLI tooling to keep versioned datasets in sync with a remote data hub.

The primary goal of datahub is to upload large datasets reliably: uploads run concurrently
on short-lived storage credentials, and an interrupted upload resumes on the same draft,
skipping what is already there.

The SDK lives in pkg/core. The command line is cmd/datahub.
*/
package datahub
