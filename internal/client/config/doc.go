// Package config loads runtime configuration for the gophauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see (*Config).LoadFile), selected with
//     --config on the command line.
//  3. Command-line flags bound by the cli package, which override earlier
//     values.
//
// # File schema
//
// Durations use timex.Duration, so values can be either strings like "5s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s",
//	  "session_file": "/home/me/.config/gophauth/session.json"
//	}
package config
