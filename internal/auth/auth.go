// Package auth provides the authentication and profile bounded context.
//
// It owns accounts, credentials, refresh tokens, and user profiles. Other
// modules read profile data through the adapters package rather than
// importing this package directly.
package auth
