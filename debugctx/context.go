package debugctx

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

const debugLevel = 1

func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

func Logger(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}

func Enabled(ctx context.Context) bool {
	return Logger(ctx).V(debugLevel).Enabled()
}

// Printf emits a debug line through the context logger.
func Printf(ctx context.Context, format string, args ...any) {
	logger := Logger(ctx).V(debugLevel)
	if !logger.Enabled() {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	logger.Info(message)
}
