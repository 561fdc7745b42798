// logger.go records every model call in the application log.
//
// Requests and responses go to applog under the "ai" category. Prompt
// and reply bodies are only written at debug level since they embed
// schema text and query results.
package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/DachengChen/sqlchat/applog"
)

// logged wraps a Provider and logs each call.
type logged struct {
	Provider
}

// WithLogging returns p wrapped so every Complete call is logged.
func WithLogging(p Provider) Provider {
	if _, ok := p.(logged); ok {
		return p
	}
	return logged{Provider: p}
}

func (l logged) Complete(ctx context.Context, req Request) (string, error) {
	LogRequest(l.Name(), req)
	start := time.Now()
	reply, err := l.Provider.Complete(ctx, req)
	LogResponse(l.Name(), reply, time.Since(start), err)
	return reply, err
}

// LogRequest logs an outgoing completion request.
func LogRequest(provider string, req Request) {
	size := 0
	for _, m := range req.Messages {
		size += len(m.Content)
	}
	applog.Event("ai", "request",
		slog.String("provider", provider),
		slog.Int("messages", len(req.Messages)),
		slog.Int("prompt_bytes", size),
		slog.Float64("temperature", req.Temperature),
	)
	if len(req.Messages) > 0 {
		applog.L().Debug("ai prompt",
			slog.String("provider", provider),
			slog.String("content", req.Messages[len(req.Messages)-1].Content),
		)
	}
}

// LogResponse logs a completion result or failure.
func LogResponse(provider, reply string, elapsed time.Duration, err error) {
	if err != nil {
		applog.Error("ai request failed", err,
			slog.String("provider", provider),
			slog.Duration("elapsed", elapsed),
		)
		return
	}
	applog.Event("ai", "response",
		slog.String("provider", provider),
		slog.Int("reply_bytes", len(reply)),
		slog.Duration("elapsed", elapsed),
	)
	applog.L().Debug("ai reply", slog.String("provider", provider), slog.String("content", reply))
}
