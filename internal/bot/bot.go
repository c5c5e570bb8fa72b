// Package bot drives the per-user conversation: authentication, the main
// menu, config editing, the extraction pipeline, and message clearing.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danhigham/mailstr/internal/clear"
	"github.com/danhigham/mailstr/internal/domain"
	"github.com/danhigham/mailstr/internal/extract"
	"github.com/danhigham/mailstr/internal/format"
	"github.com/danhigham/mailstr/internal/session"
)

// Transport sends replies and deletes messages on the chat platform.
// The handler only ever emits these two intents; the Telegram adapter
// executes them.
type Transport interface {
	// SendText delivers text to the chat, optionally attaching a reply
	// keyboard, and returns the id of the sent message.
	SendText(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Options carries the injected comparison data the handler treats as
// opaque: the shared access secret and the ordered password pattern table.
type Options struct {
	AccessPassword string
	Patterns       []domain.PasswordPattern
}

// Handler is the conversation state machine. One HandleMessage call per
// inbound event; per-user serialization comes from the session store.
type Handler struct {
	store     *session.Store
	sched     *clear.Scheduler
	transport Transport
	secret    string
	patterns  []domain.PasswordPattern
	logger    *zap.Logger
}

// NewHandler wires the state machine to its collaborators.
func NewHandler(store *session.Store, sched *clear.Scheduler, transport Transport, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		sched:     sched,
		transport: transport,
		secret:    opts.AccessPassword,
		patterns:  opts.Patterns,
		logger:    logger,
	}
}

// HandleMessage processes one inbound text message or menu selection.
func (h *Handler) HandleMessage(ctx context.Context, msg domain.Message) {
	defer h.recoverToMenu(ctx, msg)

	switch strings.TrimSpace(msg.Text) {
	case "/start":
		h.handleStart(ctx, msg)
		return
	case "/cancel":
		h.handleCancel(ctx, msg)
		return
	case "/help":
		h.send(ctx, msg.ChatID, helpText, nil)
		return
	}

	h.store.Visit(msg.UserID, func(s *session.Session) {
		if !s.Active {
			// Conversation ended or never started; wait for /start.
			return
		}
		switch s.State {
		case domain.StateAwaitingPassword:
			h.onPassword(ctx, msg, s)
		case domain.StateMainMenu:
			h.onMainMenu(ctx, msg, s)
		case domain.StateEditingConfig:
			h.onEditingConfig(ctx, msg, s)
		case domain.StateAwaitingEmailInput:
			h.onEmailInput(ctx, msg, s)
		case domain.StateShowingOutput:
			h.onShowingOutput(ctx, msg, s)
		}
	})
}

func (h *Handler) handleStart(ctx context.Context, msg domain.Message) {
	h.store.Visit(msg.UserID, func(s *session.Session) {
		s.Active = true
		if s.Authenticated {
			h.showMenu(ctx, msg.ChatID)
			s.State = domain.StateMainMenu
			return
		}
		h.send(ctx, msg.ChatID, passwordPrompt, passwordKeyboard())
		s.State = domain.StateAwaitingPassword
	})
}

func (h *Handler) handleCancel(ctx context.Context, msg domain.Message) {
	h.store.Visit(msg.UserID, func(s *session.Session) {
		s.Active = false
		s.PendingField = ""
	})
	h.send(ctx, msg.ChatID, cancelled, removeKeyboard())
}

func (h *Handler) onPassword(ctx context.Context, msg domain.Message, s *session.Session) {
	if msg.Text != h.secret {
		h.send(ctx, msg.ChatID, incorrectPassword, nil)
		return
	}
	s.Authenticated = true
	h.logger.Info("user authenticated", zap.Int64("user_id", msg.UserID))
	h.send(ctx, msg.ChatID, accessGranted, nil)
	h.showMenu(ctx, msg.ChatID)
	s.State = domain.StateMainMenu
}

func (h *Handler) onMainMenu(ctx context.Context, msg domain.Message, s *session.Session) {
	switch msg.Text {
	case labelConfiguration:
		h.send(ctx, msg.ChatID, configView(s.Config), configKeyboard())
		s.State = domain.StateEditingConfig
	case labelInputEmails:
		h.send(ctx, msg.ChatID, emailPrompt, emailKeyboard())
		s.State = domain.StateAwaitingEmailInput
	case labelClearMessages:
		h.clearMessages(ctx, msg, s)
		h.showMenu(ctx, msg.ChatID)
	case labelReset:
		h.store.Reset(s)
		h.send(ctx, msg.ChatID, resetDone, nil)
		h.showMenu(ctx, msg.ChatID)
	case labelCancel:
		s.Active = false
		s.PendingField = ""
		h.send(ctx, msg.ChatID, cancelled, removeKeyboard())
	default:
		h.showMenu(ctx, msg.ChatID)
	}
}

func (h *Handler) onEditingConfig(ctx context.Context, msg domain.Message, s *session.Session) {
	text := msg.Text

	switch text {
	case labelDone:
		s.PendingField = ""
		h.send(ctx, msg.ChatID, configDone, nil)
		h.showMenu(ctx, msg.ChatID)
		s.State = domain.StateMainMenu
		return
	case labelBackToMenu:
		s.PendingField = ""
		h.showMenu(ctx, msg.ChatID)
		s.State = domain.StateMainMenu
		return
	}

	// A pending field selection is consumed by whatever comes next,
	// valid or not.
	pending := s.PendingField
	s.PendingField = ""

	if session.IsField(text) {
		s.PendingField = text
		current, _ := session.FieldValue(s.Config, text)
		h.send(ctx, msg.ChatID, fieldPrompt(text, current), nil)
		return
	}

	if key, value, found := strings.Cut(text, "="); found {
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		h.applyField(ctx, msg.ChatID, s, key, value)
		return
	}

	if pending != "" {
		h.applyField(ctx, msg.ChatID, s, pending, text)
		return
	}

	h.send(ctx, msg.ChatID, invalidFormat, nil)
}

func (h *Handler) applyField(ctx context.Context, chatID int64, s *session.Session, field, value string) {
	if err := session.ApplyField(&s.Config, field, value); err != nil {
		if errors.Is(err, session.ErrInvalidValue) {
			h.send(ctx, chatID, invalidTimerValue, nil)
			return
		}
		h.send(ctx, chatID, invalidSetting, nil)
		return
	}
	h.send(ctx, chatID, "✅ Updated "+field+" to: "+value, nil)
	h.send(ctx, chatID, updatedConfigView(s.Config), nil)
}

func (h *Handler) onEmailInput(ctx context.Context, msg domain.Message, s *session.Session) {
	if msg.Text == labelBackToMenu {
		h.showMenu(ctx, msg.ChatID)
		s.State = domain.StateMainMenu
		return
	}

	emails := extract.Emails(msg.Text)
	if len(emails) == 0 {
		h.send(ctx, msg.ChatID, noEmailsFound, nil)
		return
	}

	if cred, ok := extract.DetectPassword(msg.Text, h.patterns); ok {
		s.Config.PrimePass = cred.PrimePass
		s.Config.MailPass = cred.MailPass
	}

	out := format.Output(s.Config, emails)
	outID := h.send(ctx, msg.ChatID, outputView(out, len(emails), s.Config.AutoClearTimer), outputKeyboard())

	s.LastEmails = emails
	s.ClearIDs = []int{msg.MessageID}
	if outID != 0 {
		s.ClearIDs = append(s.ClearIDs, outID)
	}

	if s.Config.AutoClearTimer > 0 {
		s.ClearJob = h.sched.Schedule(msg.ChatID, s.ClearIDs, time.Duration(s.Config.AutoClearTimer)*time.Second)
	}

	s.State = domain.StateShowingOutput
}

func (h *Handler) onShowingOutput(ctx context.Context, msg domain.Message, s *session.Session) {
	switch msg.Text {
	case labelClearMessages:
		h.clearMessages(ctx, msg, s)
		h.showMenu(ctx, msg.ChatID)
		s.State = domain.StateMainMenu
	case labelCopyAgain:
		if len(s.LastEmails) == 0 {
			h.send(ctx, msg.ChatID, noCachedEmails, removeKeyboard())
			h.showMenu(ctx, msg.ChatID)
			s.State = domain.StateMainMenu
			return
		}
		out := format.Output(s.Config, s.LastEmails)
		outID := h.send(ctx, msg.ChatID, copyAgainView(out), outputKeyboard())
		if outID != 0 {
			s.ClearIDs = append(s.ClearIDs, outID)
		}
	case labelBackToMenu:
		h.showMenu(ctx, msg.ChatID)
		s.State = domain.StateMainMenu
	}
}

// clearMessages runs the manual clear: cancel the auto-clear job covering
// the recorded set, then best-effort delete the triggering command message
// and every recorded id. The bookkeeping is emptied first so a timer
// racing this clear has nothing left to re-delete through the session.
// Jobs covering earlier extractions keep running and delete their own
// messages.
func (h *Handler) clearMessages(ctx context.Context, msg domain.Message, s *session.Session) {
	ids := append([]int{msg.MessageID}, s.ClearIDs...)
	s.ClearIDs = nil
	if s.ClearJob != nil {
		s.ClearJob.Cancel()
		s.ClearJob = nil
	}
	h.sched.DeleteNow(ctx, msg.ChatID, ids)
}

func (h *Handler) showMenu(ctx context.Context, chatID int64) {
	h.send(ctx, chatID, menuHeader, mainMenuKeyboard())
}

// send delivers a reply and returns the sent message id, or 0 when the
// transport failed. Transport failures are logged, never surfaced.
func (h *Handler) send(ctx context.Context, chatID int64, text string, kb *domain.Keyboard) int {
	id, err := h.transport.SendText(ctx, chatID, text, kb)
	if err != nil {
		h.logger.Error("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0
	}
	return id
}

// recoverToMenu degrades any unexpected rendering failure to an apology
// and puts authenticated users back on the main menu.
func (h *Handler) recoverToMenu(ctx context.Context, msg domain.Message) {
	r := recover()
	if r == nil {
		return
	}
	h.logger.Error("handler panic",
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
		zap.Any("panic", r),
	)
	h.store.Visit(msg.UserID, func(s *session.Session) {
		if !s.Authenticated || !s.Active {
			return
		}
		s.PendingField = ""
		s.State = domain.StateMainMenu
		h.send(ctx, msg.ChatID, apology, mainMenuKeyboard())
	})
}
