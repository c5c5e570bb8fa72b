package telegram

import (
	"github.com/gotd/td/tg"

	"github.com/danhigham/mailstr/internal/domain"
)

// replyMarkup converts a domain keyboard to Telegram reply markup.
// Returns nil when no keyboard should be attached.
func replyMarkup(kb *domain.Keyboard) tg.ReplyMarkupClass {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return &tg.ReplyKeyboardHide{}
	}

	rows := make([]tg.KeyboardButtonRow, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tg.KeyboardButtonClass, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, &tg.KeyboardButton{Text: label})
		}
		rows = append(rows, tg.KeyboardButtonRow{Buttons: buttons})
	}

	m := &tg.ReplyKeyboardMarkup{
		Rows:      rows,
		Resize:    true,
		SingleUse: kb.OneTime,
	}
	if kb.Placeholder != "" {
		m.SetPlaceholder(kb.Placeholder)
	}
	return m
}

// sentMessageID extracts the id of the message just sent from the
// updates returned by messages.sendMessage. Returns 0 if none is found.
func sentMessageID(upd tg.UpdatesClass) int {
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID
	case *tg.Updates:
		for _, up := range u.Updates {
			switch x := up.(type) {
			case *tg.UpdateMessageID:
				return x.ID
			case *tg.UpdateNewMessage:
				if m, ok := x.Message.(*tg.Message); ok {
					return m.ID
				}
			}
		}
	case *tg.UpdatesCombined:
		for _, up := range u.Updates {
			if x, ok := up.(*tg.UpdateMessageID); ok {
				return x.ID
			}
		}
	}
	return 0
}
