// Package cli implements the gophauth command-line client on top of cobra.
//
// Commands:
//
//	register   create an account (prompts for the password)
//	login      authenticate and store the token pair in the session file
//	refresh    exchange the stored refresh token for a new access token
//	me         show the claims of the stored access token
//	logout     forget the stored session
//
// Passwords are read without echo when stdin is a terminal, otherwise a line
// is read from stdin so the CLI can be scripted.
package cli
