// Package common contains shared constants, sentinel errors and the typed
// error used across gophauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName is the gRPC metadata key echoing the request id
// assigned by the server.
const RequestIDHeaderName = "x-request-id"
