package session_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/danhigham/mailstr/internal/domain"
	"github.com/danhigham/mailstr/internal/session"
)

var defaults = domain.Config{
	Prime:          "prime",
	Validity:       "1m",
	BinType:        "BIN",
	AutoClearTimer: 300,
}

func TestStore_GetOrCreate_Defaults(t *testing.T) {
	st := session.NewStore(defaults)

	s := st.GetOrCreate(1)
	if s.Authenticated {
		t.Error("new session should not be authenticated")
	}
	if s.State != domain.StateAwaitingPassword {
		t.Errorf("State = %v, want %v", s.State, domain.StateAwaitingPassword)
	}
	if s.Config != defaults {
		t.Errorf("Config = %+v, want defaults %+v", s.Config, defaults)
	}
}

func TestStore_SetAuthenticated(t *testing.T) {
	st := session.NewStore(defaults)

	st.SetAuthenticated(7)
	if !st.GetOrCreate(7).Authenticated {
		t.Error("session not marked authenticated")
	}
}

func TestStore_UpdateConfigField(t *testing.T) {
	st := session.NewStore(defaults)

	if err := st.UpdateConfigField(1, "validity", "3d"); err != nil {
		t.Fatalf("UpdateConfigField() error: %v", err)
	}
	if got := st.GetOrCreate(1).Config.Validity; got != "3d" {
		t.Errorf("Validity = %q, want %q", got, "3d")
	}
}

func TestStore_UpdateConfigField_Invalid(t *testing.T) {
	st := session.NewStore(defaults)

	err := st.UpdateConfigField(1, "bogus_key", "x")
	if !errors.Is(err, session.ErrInvalidField) {
		t.Errorf("error = %v, want ErrInvalidField", err)
	}
	if got := st.GetOrCreate(1).Config; got != defaults {
		t.Errorf("config changed on invalid field: %+v", got)
	}
}

func TestStore_UpdateConfigField_TimerValidation(t *testing.T) {
	st := session.NewStore(defaults)

	for _, bad := range []string{"abc", "-1", "1.5", ""} {
		if err := st.UpdateConfigField(1, "auto_clear_timer", bad); !errors.Is(err, session.ErrInvalidValue) {
			t.Errorf("auto_clear_timer=%q: error = %v, want ErrInvalidValue", bad, err)
		}
	}

	if err := st.UpdateConfigField(1, "auto_clear_timer", "0"); err != nil {
		t.Fatalf("auto_clear_timer=0 rejected: %v", err)
	}
	if got := st.GetOrCreate(1).Config.AutoClearTimer; got != 0 {
		t.Errorf("AutoClearTimer = %d, want 0", got)
	}
}

func TestStore_ResetConfig(t *testing.T) {
	st := session.NewStore(defaults)

	if err := st.UpdateConfigField(1, "prime", "changed"); err != nil {
		t.Fatal(err)
	}
	st.ResetConfig(1)
	if got := st.GetOrCreate(1).Config; got != defaults {
		t.Errorf("after reset Config = %+v, want %+v", got, defaults)
	}
}

func TestStore_NoCrossSessionLeak(t *testing.T) {
	st := session.NewStore(defaults)

	if err := st.UpdateConfigField(1, "prime", "edited"); err != nil {
		t.Fatal(err)
	}
	if got := st.GetOrCreate(2).Config.Prime; got != "prime" {
		t.Errorf("user 2 Prime = %q, want default %q (edit leaked across sessions)", got, "prime")
	}
	st.ResetConfig(1)
	if got := st.GetOrCreate(1).Config.Prime; got != "prime" {
		t.Errorf("user 1 Prime after reset = %q, want %q", got, "prime")
	}
}

func TestStore_ConcurrentUsers(t *testing.T) {
	st := session.NewStore(defaults)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			st.SetAuthenticated(id)
			_ = st.UpdateConfigField(id, "validity", "7d")
			st.ResetConfig(id)
		}(int64(i % 5))
	}
	wg.Wait()

	for id := int64(0); id < 5; id++ {
		s := st.GetOrCreate(id)
		if !s.Authenticated {
			t.Errorf("user %d lost authenticated flag", id)
		}
		if s.Config != defaults {
			t.Errorf("user %d Config = %+v, want defaults", id, s.Config)
		}
	}
}

func TestFieldValue(t *testing.T) {
	cfg := domain.Config{Prime: "p", AutoClearTimer: 60}

	if v, ok := session.FieldValue(cfg, "prime"); !ok || v != "p" {
		t.Errorf("FieldValue(prime) = %q, %v", v, ok)
	}
	if v, ok := session.FieldValue(cfg, "auto_clear_timer"); !ok || v != "60" {
		t.Errorf("FieldValue(auto_clear_timer) = %q, %v", v, ok)
	}
	if _, ok := session.FieldValue(cfg, "nope"); ok {
		t.Error("FieldValue(nope) should report false")
	}
}

func TestIsField(t *testing.T) {
	for _, f := range session.ConfigFields {
		if !session.IsField(f) {
			t.Errorf("IsField(%q) = false", f)
		}
	}
	if session.IsField("password") {
		t.Error("IsField(password) = true, want false")
	}
}
