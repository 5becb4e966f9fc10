package services

import (
	"context"

	"github.com/dmitrijs2005/bakerykit/internal/logging"
)

// Notifier delivers password reset codes to the account owner.
type Notifier interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// LogNotifier writes reset codes to the log. Development only.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendResetCode(ctx context.Context, email, code string) error {
	n.log.Info(ctx, "password reset code issued", "email", email, "code", code)
	return nil
}
