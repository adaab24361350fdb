// Package client talks to the AudioKeeper HTTP API.
//
// Client is the transport contract used by the CLI services; HTTPClient is
// its implementation. Failures are mapped to the shared error kinds in
// package common, so callers match them with errors.Is. A server that
// cannot be reached yields ErrUnavailable.
package client
