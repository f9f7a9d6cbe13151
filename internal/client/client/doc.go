// Package client implements the gophauth gRPC client used by the CLI.
//
// GRPCClient wraps the generated AuthService client, keeps the current
// access/refresh token pair in memory and transparently refreshes the access
// token once when an authenticated call is rejected. Server errors are mapped
// onto the package sentinels (ErrUnauthorized, ErrAlreadyExists,
// ErrUnavailable) so callers can branch with errors.Is.
//
// Session persists the token pair between CLI invocations.
package client
