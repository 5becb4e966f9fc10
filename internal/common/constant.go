// Package common contains shared constants and sentinel errors used across
// bakerykit components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token on
// outbound authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token inside AuthorizationHeaderName.
const BearerScheme = "Bearer "

// RequestIDHeaderName correlates a client request with backend logs.
const RequestIDHeaderName = "X-Request-ID"
