// Package repository defines the storage interfaces the service layer
// programs against. Two implementations exist: jsonfile (flat JSON
// documents, the default) and sqlite (embedded database). The service
// layer never knows which one it got — that is decided once, in
// internal/server, from configuration.
package repository

import (
	"context"

	"github.com/nmelnikov5/task-manager/internal/model"
)

// UserRepository stores registered accounts.
//
// CreateUser must assign the next integer id (max existing + 1, or 1 for
// an empty store), reject duplicate usernames with apperror.ErrConflict,
// and persist before returning. Users are never updated or deleted.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// TodoRepository stores todo items.
//
// THE OWNERSHIP-COMBINED LOOKUP:
// Get, Update and Delete all key on (id, userID) TOGETHER. An item that
// exists but belongs to another user produces the same ErrNotFound as an
// item that doesn't exist at all — ownership is part of the lookup key,
// not a post-check, so callers can't distinguish "not yours" from
// "not there".
type TodoRepository interface {
	// ListTodos returns the caller's items in insertion order.
	// Returns an empty (non-nil) slice when the user has no items.
	ListTodos(ctx context.Context, userID int) ([]model.TodoItem, error)
	// CreateTodo assigns the next global id, appends, and persists.
	// item.UserID must already be set by the caller (the service forces
	// it to the authenticated identity).
	CreateTodo(ctx context.Context, item *model.TodoItem) error
	GetTodo(ctx context.Context, userID, id int) (*model.TodoItem, error)
	UpdateTodo(ctx context.Context, item *model.TodoItem) error
	DeleteTodo(ctx context.Context, userID, id int) error
}
