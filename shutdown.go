package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
)

// stopper is the part of mono.MonoApplication that shutdown needs.
type stopper interface {
	Stop(ctx context.Context) error
}

type closer interface {
	Close(ctx context.Context) error
}

// stopApp drains the modules first and only then closes the store, so
// in-flight requests never see a closed connection. gfshutdown runs each of
// its operations concurrently, which is why both steps share one operation.
func stopApp(ctx context.Context, app stopper, store closer) error {
	var errs []error
	if err := app.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop modules: %w", err))
	}
	if err := store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

func monoLogLevel(level string) mono.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return mono.LogLevelDebug
	case "warn", "warning":
		return mono.LogLevelWarn
	case "error":
		return mono.LogLevelError
	}
	return mono.LogLevelInfo
}

func monoLogFormat(format string) mono.LogFormat {
	if strings.EqualFold(format, "json") {
		return mono.LogFormatJSON
	}
	return mono.LogFormatText
}
