// Package common contains shared constants used by the console client,
// the in-memory backend and the CLI.
package common

// Outbound request headers.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeJSON         = "application/json"

	// BasicScheme prefixes the encoded credential in the Authorization header.
	BasicScheme = "Basic "
)

// Keys of the persisted session metadata.
const (
	// CredentialKey holds base64("username:password").
	CredentialKey = "authBasic"
	// IdentityKey holds the display username of the logged-in employee.
	IdentityKey = "currentUser"
)
