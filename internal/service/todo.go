// Package service — todo item business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

// TodoService handles business logic for todo items.
//
// EVERY method takes the authenticated user's id as its first real
// parameter — the identity from the validated token, never from the
// request body. That single convention is the whole authorization model:
// the repository's ownership-combined lookups do the rest.
type TodoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
}

// NewTodoService creates a new TodoService.
// The caller decides which repository implementation to inject
// (jsonfile, sqlite, or a mock in tests).
func NewTodoService(repo repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

// CreateTodoInput is what a client may supply at creation time.
// Note what is NOT here: id (assigned by the store), done/status (always
// start at their defaults), and userId (always the authenticated caller —
// a client-supplied owner would be an authorization bypass).
type CreateTodoInput struct {
	Text     string     `json:"text"`
	DueDate  *time.Time `json:"dueDate"`
	Tags     []string   `json:"tags"`
	Reminder *time.Time `json:"reminder"`
}

// List returns the caller's items, insertion order, no pagination.
func (s *TodoService) List(ctx context.Context, userID int) ([]model.TodoItem, error) {
	items, err := s.repo.ListTodos(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list todo items",
			slog.Int("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing todo items: %w", err)
	}
	return items, nil
}

// Create validates and saves a new item for the given user.
//
// `text` is the only required field; everything else defaults:
// done=false, status="new", tags=[], dueDate/reminder=null.
func (s *TodoService) Create(ctx context.Context, userID int, input CreateTodoInput) (*model.TodoItem, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	item := &model.TodoItem{
		Text:     input.Text,
		Done:     false,
		Status:   model.StatusNew,
		DueDate:  input.DueDate,
		Tags:     tags,
		Reminder: input.Reminder,
		UserID:   userID, // forced to the caller, whatever the body said
	}

	if err := s.repo.CreateTodo(ctx, item); err != nil {
		s.logger.Error("failed to create todo item",
			slog.Int("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating todo item: %w", err)
	}

	s.logger.Info("todo item created",
		slog.Int("id", item.ID),
		slog.Int("userID", userID),
	)

	return item, nil
}

// Update merges a partial JSON document over the stored item.
//
// MERGE SEMANTICS:
// The patch is unmarshalled directly over a copy of the stored record, so
// only keys PRESENT in the patch change anything:
//   - key absent        → prior value kept
//   - key present       → value fully replaced
//   - key present: null → nullable field cleared (dueDate, reminder)
//
// `id` and `userId` are re-forced from the authenticated lookup after the
// merge — the original service let a patch rewrite the owner, which was a
// privilege-escalation hole, not a feature.
//
// The (userID, id) lookup happens first, so a foreign or missing item is
// NotFound before any merge work.
func (s *TodoService) Update(ctx context.Context, userID, id int, patch json.RawMessage) (*model.TodoItem, error) {
	item, err := s.repo.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	merged := *item
	if err := json.Unmarshal(patch, &merged); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid JSON body")
	}
	merged.ID = item.ID
	merged.UserID = item.UserID
	if merged.Tags == nil {
		merged.Tags = []string{}
	}

	if err := s.repo.UpdateTodo(ctx, &merged); err != nil {
		s.logger.Error("failed to update todo item",
			slog.Int("id", id),
			slog.String("error", err.Error()),
		)
		// %w keeps the chain intact — if the store raced and the item is
		// gone, errors.Is still finds ErrNotFound through the wrap.
		return nil, fmt.Errorf("updating todo item: %w", err)
	}

	s.logger.Info("todo item updated",
		slog.Int("id", id),
		slog.Int("userID", userID),
	)

	return &merged, nil
}

// Delete removes the caller's item. Same ownership-combined lookup as
// Update: a foreign id and a missing id are the same NotFound.
func (s *TodoService) Delete(ctx context.Context, userID, id int) error {
	if err := s.repo.DeleteTodo(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("todo item deleted",
		slog.Int("id", id),
		slog.Int("userID", userID),
	)
	return nil
}
