// Package client contains the client-side API contract of taxvault and its
// REST implementation.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): file
//     upload, listing and download, the yearly tax export, dashboard
//     summaries and attachment linking.
//  2. A concrete HTTP implementation (see RESTClient) that sends the bearer
//     token on every request and maps HTTP status codes to sentinel errors.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Status codes map to the
// shared sentinels in internal/common (401 -> ErrorUnauthorized,
// 403 -> ErrorForbidden, 404 -> ErrorNotFound, 400 -> ErrBadRequest), so
// callers can match them with errors.Is.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
