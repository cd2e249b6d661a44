// Package client contains the console's transport layer to the backend REST
// API.
//
// # Overview
//
// The package provides:
//  1. A transport contract (the Client interface) used by the entity caches
//     and the session: Do(ctx, Request, out).
//  2. HTTPClient, the authenticated request builder. It sets the JSON
//     content headers and a request ID, re-reads the encoded credential from a
//     CredentialSource on every call and sends it as "Authorization: Basic
//     <token>", or sends no Authorization header when none is stored.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite database that holds the session metadata.
//
// # Error Handling
//
// Do never fails for an HTTP status: 4xx and 5xx come back as a *Response
// whose Err method maps the status to a sentinel. Only transport failures
// and undecodable 2xx bodies are returned as errors, always wrapping
// ErrNetwork. Kind classifies any error into the taxonomy: ErrNetwork,
// ErrUnauthorized (401), ErrConflict (409), ErrValidation (other 4xx),
// ErrServer (5xx). Nothing is retried.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call honors ctx and the
// configured timeout.
package client
