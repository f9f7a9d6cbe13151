package config

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var knownFlags = []string{
	"-a", "-m", "-driver", "-d", "-s", "-t", "-r", "-rotate", "-store", "-redis", "-l",
	"-argon-memory", "-argon-time", "-argon-threads",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        gRPC bind address (e.g. ":50051")
//	-m string        metrics bind address, empty to disable
//	-driver string   database driver: pgx or sqlite3
//	-d string        database DSN
//	-s string        access token HMAC secret
//	-t int           access token validity, minutes
//	-r int           refresh token validity, minutes
//	-rotate          rotate refresh tokens on use
//	-store string    refresh token store: sql or redis
//	-redis string    redis address
//	-l string        log level
//	-argon-memory    argon2id memory, KiB
//	-argon-time      argon2id iterations
//	-argon-threads   argon2id parallelism
//
// Durations are given in whole minutes and only replace the configured
// value when the flag is present. Unknown flags are filtered out
// with flagx.FilterArgs first so -c/-config and friends do not collide.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx, sqlite3)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.BoolVar(&config.RotateRefreshTokens, "rotate", config.RotateRefreshTokens, "rotate refresh tokens on use")
	fs.StringVar(&config.RefreshTokenStore, "store", config.RefreshTokenStore, "refresh token store (sql, redis)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	memory := fs.Uint("argon-memory", uint(config.PasswordMemoryKB), "argon2id memory (KiB)")
	iterations := fs.Uint("argon-time", uint(config.PasswordTime), "argon2id iterations")
	threads := fs.Uint("argon-threads", uint(config.PasswordParallelism), "argon2id parallelism")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given on the command line override values from the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		case "argon-memory":
			config.PasswordMemoryKB = uint32(*memory)
		case "argon-time":
			config.PasswordTime = uint32(*iterations)
		case "argon-threads":
			if *threads > math.MaxUint8 {
				panic(fmt.Errorf("argon-threads must be <= %d, got %d", math.MaxUint8, *threads))
			}
			config.PasswordParallelism = uint8(*threads)
		}
	})
}
