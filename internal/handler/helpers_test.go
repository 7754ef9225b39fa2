package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/octobees/business-directory/internal/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captureMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (c *captureMailer) Send(ctx context.Context, msg notify.Message) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

var errBoom = errors.New("boom")
