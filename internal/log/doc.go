// Package log provides slog loggers that sanitize sensitive information
// before it reaches the output.
//
// Crawled URLs frequently carry credentials: basic auth userinfo,
// signed query parameters, session ids. The SecureHandler masks these
// along with sensitive attribute keys (Authorization, Cookie, tokens)
// and well known secret formats (JWT, bearer tokens).
//
// # Usage
//
//	logger := log.New(os.Stderr, slog.LevelDebug, false) // text output
//
//	logger.Info("page analyzed",
//	    "url", "https://user:pw@example.com/a?token=abc", // https://***@example.com/a?token=***
//	    "cookie", "session=abc123",                      // ***REDACTED***
//	)
//
//	slog.SetDefault(logger)
package log
