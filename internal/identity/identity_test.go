package identity

import (
	goerrors "errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func setupTestManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	m := New(store, WithClock(now), WithLocation(time.UTC), WithBcryptCost(bcrypt.MinCost))
	return m, store
}

func TestRegisterAndLogin(t *testing.T) {
	m, _ := setupTestManager(t)

	u, err := m.Register("alice", "secret1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.LastLogin != "2024-03-10" || u.Theme != models.ThemeDark {
		t.Errorf("unexpected new user: %+v", u)
	}
	if !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", u.PasswordHash)
	}

	got, err := m.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %d, got %d", u.ID, got.ID)
	}

	if _, err := m.Login("alice", "wrong-password"); !goerrors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := m.Login("nobody", "secret1"); !goerrors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterRejects(t *testing.T) {
	m, _ := setupTestManager(t)
	if _, err := m.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"duplicate", "alice", "another1", errors.ErrDuplicateUsername},
		{"short username", "al", "secret1", errors.ErrValidation},
		{"long username", strings.Repeat("a", 33), "secret1", errors.ErrValidation},
		{"whitespace", "al ice", "secret1", errors.ErrValidation},
		{"short password", "bob", "12345", errors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Register(tt.username, tt.password); !goerrors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration("alice", "secret1", "secret1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateRegistration("alice", "secret1", "secret2")
	if !goerrors.Is(err, errors.ErrValidation) || !strings.Contains(err.Error(), "do not match") {
		t.Errorf("expected mismatch error, got %v", err)
	}
}

func TestLegacyHashIsUpgraded(t *testing.T) {
	m, store := setupTestManager(t)
	u, err := store.CreateUser(models.User{Username: "carol", PasswordHash: legacyHash("hunter22")})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := m.Login("carol", "wrong-one"); !goerrors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := m.Login("carol", "hunter22"); err != nil {
		t.Fatalf("legacy Login failed: %v", err)
	}

	stored, err := store.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if isLegacyHash(stored.PasswordHash) {
		t.Error("expected legacy hash to be replaced")
	}
	if _, err := m.Login("carol", "hunter22"); err != nil {
		t.Errorf("Login after upgrade failed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	m, _ := setupTestManager(t)
	u, err := m.Register("alice", "secret1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := m.ChangePassword(u.ID, "not-it", "newsecret"); !goerrors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := m.ChangePassword(u.ID, "secret1", "short"); !goerrors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := m.ChangePassword(u.ID, "secret1", "newsecret"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := m.Login("alice", "newsecret"); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}
	if _, err := m.Login("alice", "secret1"); !goerrors.Is(err, errors.ErrInvalidCredentials) {
		t.Errorf("old password should no longer work, got %v", err)
	}
}

func TestThemeAndLastLogin(t *testing.T) {
	m, store := setupTestManager(t)
	u, err := store.CreateUser(models.User{Username: "alice", PasswordHash: "x", LastLogin: "2024-01-01"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := m.SaveTheme(u.ID, "purple"); !goerrors.Is(err, errors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := m.SaveTheme(u.ID, models.ThemeLight); err != nil {
		t.Fatalf("SaveTheme failed: %v", err)
	}
	theme, err := m.Theme(u.ID)
	if err != nil {
		t.Fatalf("Theme failed: %v", err)
	}
	if theme != models.ThemeLight {
		t.Errorf("expected light theme, got %s", theme)
	}

	if err := m.UpdateLastLogin(u.ID); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}
	got, err := m.User(u.ID)
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	if got.LastLogin != "2024-03-10" {
		t.Errorf("expected last_login 2024-03-10, got %s", got.LastLogin)
	}

	if _, err := m.Theme(9999); !goerrors.Is(err, errors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
