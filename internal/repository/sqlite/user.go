package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

// Compile-time check that *DB satisfies the interface.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new account, letting SQLite assign the next id.
//
// Duplicate usernames are rejected up front with a SELECT so the common
// case gets a clean Conflict error; the UNIQUE constraint is the backstop
// for the race between two concurrent registrations, and its error is
// translated to the same Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", user.Username)
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		user.Username, user.PasswordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	// LastInsertId is the rowid SQLite picked — max(existing)+1.
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = int(id)

	return nil
}

// GetUserByUsername finds an account by exact username. SQLite TEXT
// comparison is case-sensitive by default, which is the contract here.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return &user, nil
}
