package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

const userColumns = "id, username, password_hash, last_login, theme, session_token, created_at"

func (s *Store) CreateUser(u models.User) (models.User, error) {
	if u.Theme == "" {
		u.Theme = models.DefaultTheme
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	var lastLogin sql.NullString
	if u.LastLogin != "" {
		lastLogin = sql.NullString{String: u.LastLogin, Valid: true}
	}

	err := s.queryRow(`
		INSERT INTO users (username, password_hash, last_login, theme, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{u.Username, u.PasswordHash, lastLogin, string(u.Theme), u.CreatedAt.Format(time.RFC3339)},
		&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, errors.ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(id int64) (models.User, error) {
	return s.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (s *Store) GetUserByUsername(username string) (models.User, error) {
	return s.getUser("SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (s *Store) GetUserBySessionToken(token string) (models.User, error) {
	if token == "" {
		return models.User{}, errors.ErrUserNotFound
	}
	return s.getUser("SELECT "+userColumns+" FROM users WHERE session_token = ?", token)
}

func (s *Store) getUser(query string, arg any) (models.User, error) {
	var u models.User
	var lastLogin, token sql.NullString
	var theme, createdAt string

	err := s.queryRow(query, []any{arg},
		&u.ID, &u.Username, &u.PasswordHash, &lastLogin, &theme, &token, &createdAt)
	if err != nil {
		return models.User{}, notFound(err, errors.ErrUserNotFound)
	}

	u.LastLogin = lastLogin.String
	u.SessionToken = token.String
	u.Theme = models.Theme(theme)
	u.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse created_at for user %d: %w", u.ID, err)
	}
	return u, nil
}

func (s *Store) UpdatePasswordHash(userID int64, hash string) error {
	return s.updateUser("UPDATE users SET password_hash = ? WHERE id = ?", hash, userID)
}

func (s *Store) UpdateTheme(userID int64, theme models.Theme) error {
	return s.updateUser("UPDATE users SET theme = ? WHERE id = ?", string(theme), userID)
}

func (s *Store) UpdateLastLogin(userID int64, day string) error {
	return s.updateUser("UPDATE users SET last_login = ? WHERE id = ?", day, userID)
}

func (s *Store) SetSessionToken(userID int64, token string) error {
	var value sql.NullString
	if token != "" {
		value = sql.NullString{String: token, Valid: true}
	}
	return s.updateUser("UPDATE users SET session_token = ? WHERE id = ?", value, userID)
}

func (s *Store) updateUser(query string, value any, userID int64) error {
	res, err := s.exec(query, value, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
