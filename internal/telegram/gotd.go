package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/danhigham/mailstr/internal/domain"
)

// GotdBot implements the Client interface using gotd/td with a bot token.
type GotdBot struct {
	apiID      int
	apiHash    string
	token      string
	sessionDir string
	handler    Handler
	logger     *zap.Logger

	client *telegram.Client
	api    *tg.Client

	peerCache map[int64]tg.InputPeerClass
	mu        sync.Mutex
}

// SetHandler wires the inbound message handler. Must be called before Run.
func (b *GotdBot) SetHandler(h Handler) {
	b.handler = h
}

// NewGotdBot creates a new GotdBot.
func NewGotdBot(apiID int, apiHash, token, sessionDir string, handler Handler, logger *zap.Logger) *GotdBot {
	return &GotdBot{
		apiID:      apiID,
		apiHash:    apiHash,
		token:      token,
		sessionDir: sessionDir,
		handler:    handler,
		logger:     logger,
		peerCache:  make(map[int64]tg.InputPeerClass),
	}
}

// Run starts the Telegram client and blocks until ctx is cancelled.
// Inbound private-chat messages are normalized and handed to the handler
// sequentially, preserving per-user arrival order.
func (b *GotdBot) Run(ctx context.Context) error {
	dispatcher := tg.NewUpdateDispatcher()

	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, update *tg.UpdateNewMessage) error {
		msg, ok := update.Message.(*tg.Message)
		if !ok || msg.Out {
			return nil
		}
		// The bot only works in private chats.
		peer, ok := msg.PeerID.(*tg.PeerUser)
		if !ok {
			return nil
		}
		if u, ok := e.Users[peer.UserID]; ok {
			b.cachePeer(u.ID, &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash})
		}
		b.handler.HandleMessage(ctx, domain.Message{
			UserID:    peer.UserID,
			ChatID:    peer.UserID,
			MessageID: msg.ID,
			Text:      msg.Message,
		})
		return nil
	})

	b.client = telegram.NewClient(b.apiID, b.apiHash, telegram.Options{
		Logger:         b.logger,
		UpdateHandler:  dispatcher,
		SessionStorage: &session.FileStorage{Path: filepath.Join(b.sessionDir, "session.json")},
	})

	return b.client.Run(ctx, func(ctx context.Context) error {
		status, err := b.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := b.client.Auth().Bot(ctx, b.token); err != nil {
				return fmt.Errorf("bot login: %w", err)
			}
		}

		self, err := b.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self: %w", err)
		}
		b.api = b.client.API()
		b.logger.Info("bot connected", zap.String("username", self.Username))

		<-ctx.Done()
		return ctx.Err()
	})
}

// SendText sends a text message, optionally with a reply keyboard, and
// returns the id of the sent message.
func (b *GotdBot) SendText(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error) {
	peer := b.findPeer(chatID)
	if peer == nil {
		return 0, fmt.Errorf("unknown peer: %d", chatID)
	}

	req := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int64(),
	}
	if m := replyMarkup(kb); m != nil {
		req.SetReplyMarkup(m)
	}

	upd, err := b.api.MessagesSendMessage(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sentMessageID(upd), nil
}

// DeleteMessage removes a single message from a private chat. Telegram
// may refuse (message too old, already gone); the error is returned for
// the caller to log. messages.deleteMessages addresses messages by id
// alone in private dialogs, so chatID is only used to annotate errors.
func (b *GotdBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := b.api.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
		Revoke: true,
		ID:     []int{messageID},
	})
	if err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// findPeer looks up a cached peer by chat ID.
func (b *GotdBot) findPeer(chatID int64) tg.InputPeerClass {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peerCache[chatID]
}

// cachePeer stores a peer in the cache.
func (b *GotdBot) cachePeer(chatID int64, peer tg.InputPeerClass) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peerCache[chatID] = peer
}
