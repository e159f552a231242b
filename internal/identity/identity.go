// Package identity registers users and verifies their credentials.
package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	goerrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

type Manager struct {
	store storage.Provider
	now   func() time.Time
	loc   *time.Location
	cost  int
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithBcryptCost sets the hashing cost for new passwords.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.cost = cost }
}

func New(store storage.Provider, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
		loc:   time.Local,
		cost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) today() string {
	return utils.DateIn(m.now(), m.loc)
}

// ValidateRegistration checks credentials typed at a registration prompt.
func ValidateRegistration(username, password, confirm string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return errors.Validationf("passwords do not match")
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return errors.Validationf("username must be %d to %d characters", constants.MinUsernameLength, constants.MaxUsernameLength)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return errors.Validationf("username cannot contain whitespace")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		return errors.Validationf("password must be at least %d characters", constants.MinPasswordLength)
	}
	return nil
}

// Register creates a user. last_login starts at today.
func (m *Manager) Register(username, password string) (models.User, error) {
	if err := validateUsername(username); err != nil {
		return models.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return models.User{}, err
	}

	hash, err := m.hash(password)
	if err != nil {
		return models.User{}, err
	}
	u, err := m.store.CreateUser(models.User{
		Username:     username,
		PasswordHash: hash,
		LastLogin:    m.today(),
		Theme:        models.DefaultTheme,
		CreatedAt:    m.now(),
	})
	if err != nil {
		return models.User{}, err
	}

	logger.Info("Registered user", "username", username, "user_id", u.ID)
	return u, nil
}

// Login verifies credentials. Unknown users and wrong passwords fail the same way.
func (m *Manager) Login(username, password string) (models.User, error) {
	u, err := m.store.GetUserByUsername(username)
	if err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			logger.Warn("Login failed", "username", username, "reason", "unknown user")
			return models.User{}, errors.ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, legacy := checkPassword(u.PasswordHash, password)
	if !ok {
		logger.Warn("Login failed", "username", username, "reason", "password mismatch")
		return models.User{}, errors.ErrInvalidCredentials
	}

	if legacy {
		hash, err := m.hash(password)
		if err != nil {
			return models.User{}, err
		}
		if err := m.store.UpdatePasswordHash(u.ID, hash); err != nil {
			return models.User{}, fmt.Errorf("failed to upgrade password hash: %w", err)
		}
		u.PasswordHash = hash
		logger.Info("Upgraded legacy password hash", "user_id", u.ID)
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (m *Manager) ChangePassword(userID int64, current, next string) error {
	u, err := m.store.GetUser(userID)
	if err != nil {
		return err
	}
	if ok, _ := checkPassword(u.PasswordHash, current); !ok {
		return errors.ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := m.hash(next)
	if err != nil {
		return err
	}
	return m.store.UpdatePasswordHash(userID, hash)
}

func (m *Manager) User(userID int64) (models.User, error) {
	return m.store.GetUser(userID)
}

func (m *Manager) Theme(userID int64) (models.Theme, error) {
	u, err := m.store.GetUser(userID)
	if err != nil {
		return "", err
	}
	if !u.Theme.IsValid() {
		return models.DefaultTheme, nil
	}
	return u.Theme, nil
}

func (m *Manager) SaveTheme(userID int64, theme models.Theme) error {
	if !theme.IsValid() {
		return errors.Validationf("invalid theme %q (expected dark or light)", theme)
	}
	return m.store.UpdateTheme(userID, theme)
}

// UpdateLastLogin records today as the user's last session day.
func (m *Manager) UpdateLastLogin(userID int64) error {
	return m.store.UpdateLastLogin(userID, m.today())
}

func (m *Manager) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// checkPassword compares password against a bcrypt hash, or an unsalted
// SHA-256 hex digest written by older databases. legacy is set when the
// stored hash should be replaced.
func checkPassword(stored, password string) (ok, legacy bool) {
	if isLegacyHash(stored) {
		want := legacyHash(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
}

func isLegacyHash(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
