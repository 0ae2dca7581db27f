// Package auth issues and validates the bearer tokens that guard the
// HTTP API.
//
// Tokens are HS256 JWTs carrying a subject and a Role. Roles map to a
// fixed set of permissions:
//
//   - viewer: read status, history and the live event stream
//   - operator: everything a viewer can do, plus send commands to the sign
//   - admin: everything, including minting tokens through the API
//
// Auth is optional. When security.jwt.enabled is false the API does not
// consult this package at all.
package auth
