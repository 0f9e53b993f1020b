// Package client talks to the skillhub session service over gRPC and opens
// the CLI's local session database.
package client
