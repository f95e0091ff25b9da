package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/tdl/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))
	logger.Info("template parsed", slog.Int("blocks", 4))
	// Output:
	// {"level":"INFO","msg":"template parsed","blocks":4}
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("loop passthrough", slog.String("tag", "{{#each items}}"))
	// Output:
	// level=WARN msg="loop passthrough" tag="{{#each items}}"
}

func Example_withContext() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"))

	logger.TraceContext(context.Background(), "resolve", slog.String("variable", "customer_name"))
	// Output:
	// {"level":"TRACE","msg":"resolve","variable":"customer_name"}
}
