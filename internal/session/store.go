// Package session owns per-user authentication state and the mutable
// output template each user edits through the configuration menu.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/danhigham/mailstr/internal/clear"
	"github.com/danhigham/mailstr/internal/domain"
)

var (
	// ErrInvalidField reports a config key outside the fixed field set.
	ErrInvalidField = errors.New("invalid setting name")
	// ErrInvalidValue reports a value that fails a field's validation.
	ErrInvalidValue = errors.New("invalid setting value")
)

// ConfigFields lists the editable field names in display order.
var ConfigFields = []string{
	"prime",
	"validity",
	"bin_type",
	"prime_pass",
	"mail_pass",
	"auto_clear_timer",
}

// Session is one user's conversation state. All access goes through the
// Store, which serializes operations per user.
type Session struct {
	Authenticated bool
	Active        bool
	State         domain.ConversationState
	Config        domain.Config

	// PendingField is the config field awaiting its next text input,
	// empty when none is pending.
	PendingField string

	// LastEmails caches the most recent successful extraction so
	// "Copy Again" can re-render without re-extracting.
	LastEmails []string

	// ClearIDs records message ids awaiting deletion by a manual or
	// scheduled clear. Emptied once a clear takes them.
	ClearIDs []int

	// ClearJob is the handle of the auto-clear job covering ClearIDs,
	// nil when none is pending. Earlier jobs for sets already replaced
	// in ClearIDs keep running on their own.
	ClearJob *clear.Job
}

type entry struct {
	mu sync.Mutex
	s  Session
}

// Store holds sessions keyed by user id. Operations on different users
// proceed concurrently; operations on the same user are serialized by a
// per-session lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*entry
	defaults domain.Config
}

// NewStore creates a Store whose sessions start from a copy of defaults.
func NewStore(defaults domain.Config) *Store {
	return &Store{
		sessions: make(map[int64]*entry),
		defaults: defaults,
	}
}

func (st *Store) entryFor(userID int64) *entry {
	st.mu.RLock()
	e, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return e
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok = st.sessions[userID]; ok {
		return e
	}
	e = &entry{s: Session{
		State:  domain.StateAwaitingPassword,
		Config: st.defaults, // value struct, so this is a fresh copy
	}}
	st.sessions[userID] = e
	return e
}

// Visit runs fn with exclusive access to the user's session, creating the
// session first if needed. fn must not call back into the Store for the
// same user.
func (st *Store) Visit(userID int64, fn func(s *Session)) {
	e := st.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.s)
}

// GetOrCreate returns a snapshot of the user's session, creating it with
// defaults if it does not exist yet.
func (st *Store) GetOrCreate(userID int64) Session {
	var snap Session
	st.Visit(userID, func(s *Session) {
		snap = *s
		snap.LastEmails = append([]string(nil), s.LastEmails...)
		snap.ClearIDs = append([]int(nil), s.ClearIDs...)
	})
	return snap
}

// SetAuthenticated marks the user's session as authenticated.
func (st *Store) SetAuthenticated(userID int64) {
	st.Visit(userID, func(s *Session) {
		s.Authenticated = true
	})
}

// UpdateConfigField sets one named config field. Unknown names fail with
// ErrInvalidField; auto_clear_timer additionally requires a non-negative
// integer and fails with ErrInvalidValue otherwise.
func (st *Store) UpdateConfigField(userID int64, field, value string) error {
	var err error
	st.Visit(userID, func(s *Session) {
		err = ApplyField(&s.Config, field, value)
	})
	return err
}

// ResetConfig replaces the user's config with a fresh copy of the default
// template.
func (st *Store) ResetConfig(userID int64) {
	st.Visit(userID, func(s *Session) {
		st.Reset(s)
	})
}

// Reset restores the default template on a session the caller already
// holds via Visit.
func (st *Store) Reset(s *Session) {
	s.Config = st.defaults // value struct, so this is a fresh copy
}

// IsField reports whether name is one of the editable config fields.
func IsField(name string) bool {
	for _, f := range ConfigFields {
		if f == name {
			return true
		}
	}
	return false
}

// FieldValue returns the current value of the named field, formatted for
// display.
func FieldValue(cfg domain.Config, field string) (string, bool) {
	switch field {
	case "prime":
		return cfg.Prime, true
	case "validity":
		return cfg.Validity, true
	case "bin_type":
		return cfg.BinType, true
	case "prime_pass":
		return cfg.PrimePass, true
	case "mail_pass":
		return cfg.MailPass, true
	case "auto_clear_timer":
		return strconv.Itoa(cfg.AutoClearTimer), true
	default:
		return "", false
	}
}

// ApplyField validates and sets one named field on cfg. Used both by the
// Store and by callers already holding a session via Visit.
func ApplyField(cfg *domain.Config, field, value string) error {
	switch field {
	case "prime":
		cfg.Prime = value
	case "validity":
		cfg.Validity = value
	case "bin_type":
		cfg.BinType = value
	case "prime_pass":
		cfg.PrimePass = value
	case "mail_pass":
		cfg.MailPass = value
	case "auto_clear_timer":
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 0 {
			return fmt.Errorf("%w: auto_clear_timer must be a non-negative number of seconds", ErrInvalidValue)
		}
		cfg.AutoClearTimer = secs
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}
