package domain

// Message is a normalized inbound text message from the transport adapter.
type Message struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Text      string
}

// Keyboard describes a reply keyboard to attach to an outgoing message.
// Rows hold opaque button labels; the platform echoes a label back as
// plain text when the user taps it. Remove tears the keyboard down instead.
type Keyboard struct {
	Rows        [][]string
	Placeholder string
	OneTime     bool
	Remove      bool
}

// Config is the per-user output template. Field names on the wire
// (config edits, keyboard buttons) use the snake_case keys below.
type Config struct {
	Prime          string // "prime"
	Validity       string // "validity"
	BinType        string // "bin_type"
	PrimePass      string // "prime_pass"
	MailPass       string // "mail_pass"
	AutoClearTimer int    // "auto_clear_timer", seconds; 0 disables auto-clear
}

// Credential is a detected password pair applied to a session's config.
type Credential struct {
	PrimePass string
	MailPass  string
}

// PasswordPattern maps a trigger substring (matched case-insensitively)
// to the credential pair it implies. Patterns are evaluated in order;
// the first hit wins.
type PasswordPattern struct {
	Trigger   string
	PrimePass string
	MailPass  string
}

// ConversationState identifies where a user is in the dialog flow.
type ConversationState int

const (
	StateAwaitingPassword ConversationState = iota
	StateMainMenu
	StateEditingConfig
	StateAwaitingEmailInput
	StateShowingOutput
)

func (s ConversationState) String() string {
	switch s {
	case StateAwaitingPassword:
		return "awaiting_password"
	case StateMainMenu:
		return "main_menu"
	case StateEditingConfig:
		return "editing_config"
	case StateAwaitingEmailInput:
		return "awaiting_email_input"
	case StateShowingOutput:
		return "showing_output"
	default:
		return "unknown"
	}
}
