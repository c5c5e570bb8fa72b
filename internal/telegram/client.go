package telegram

import (
	"context"

	"github.com/danhigham/mailstr/internal/domain"
)

// Handler receives normalized inbound messages from the Telegram client.
type Handler interface {
	HandleMessage(ctx context.Context, msg domain.Message)
}

// Client is the interface for Telegram operations the bot core needs.
type Client interface {
	Run(ctx context.Context) error
	SendText(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
