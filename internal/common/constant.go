// Package common contains shared constants and sentinel errors used across
// AudioKeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerTokenType is the token_type returned next to every access token and
// the scheme expected in the Authorization header.
const BearerTokenType = "bearer"

// Roles known to the service. Only "user" is ever assigned by registration.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
