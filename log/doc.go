// Package log provides a concurrency-safe logging interface based on
// [log/slog], shared by the template engine, the variable resolver, and the
// tdl command.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template parsed", slog.Int("blocks", 12))
//
// The zero value of [Logger] discards everything, so library types can hold a
// Logger field without requiring callers to configure one.
//
// # Configuration
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// An existing logger can be re-configured with [Logger.Wrap], which copies the
// configuration before applying the options.
//
// # Levels
//
// In addition to the four [log/slog] levels, the package defines [LevelTrace]
// below Debug. The engine logs per-block detail at Trace.
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) write to a default
// logger that [Config] re-configures. The tdl command configures it once from
// its --log-* flags.
package log
