package jsonfile

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

var _ repository.TodoRepository = (*Store)(nil)

// ListTodos returns the user's items in insertion order — exactly the
// order they sit in todo-items.json. No pagination: the documented scale
// of this store is "trivially small".
func (s *Store) ListTodos(_ context.Context, userID int) ([]model.TodoItem, error) {
	s.todoMu.RLock()
	defer s.todoMu.RUnlock()

	// Non-nil even when empty — the API serialises this as [], never null.
	items := []model.TodoItem{}
	for i := range s.todos {
		if s.todos[i].UserID == userID {
			items = append(items, cloneTodo(s.todos[i]))
		}
	}
	return items, nil
}

// CreateTodo assigns the next global id and rewrites todo-items.json.
//
// The id counter is global across ALL users (max over the whole
// collection), not per-user — item ids are unique service-wide.
func (s *Store) CreateTodo(_ context.Context, item *model.TodoItem) error {
	s.todoMu.Lock()
	defer s.todoMu.Unlock()

	maxID := 0
	for i := range s.todos {
		if s.todos[i].ID > maxID {
			maxID = s.todos[i].ID
		}
	}
	item.ID = maxID + 1

	s.todos = append(s.todos, cloneTodo(*item))
	if err := saveDocument(s.todosPath, s.todos); err != nil {
		s.todos = s.todos[:len(s.todos)-1]
		return fmt.Errorf("jsonfile: persisting todo item: %w", err)
	}

	return nil
}

// GetTodo looks an item up by (userID, id) together. See the
// TodoRepository docs: another user's item and a nonexistent item are
// the same NotFound.
func (s *Store) GetTodo(_ context.Context, userID, id int) (*model.TodoItem, error) {
	s.todoMu.RLock()
	defer s.todoMu.RUnlock()

	for i := range s.todos {
		if s.todos[i].ID == id && s.todos[i].UserID == userID {
			item := cloneTodo(s.todos[i])
			return &item, nil
		}
	}
	return nil, apperror.NotFound("todo item", strconv.Itoa(id))
}

// UpdateTodo replaces the stored record whose (id, userID) matches the
// given item, then rewrites the document. The caller (the service) has
// already merged partial fields over the previous record.
func (s *Store) UpdateTodo(_ context.Context, item *model.TodoItem) error {
	s.todoMu.Lock()
	defer s.todoMu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == item.ID && s.todos[i].UserID == item.UserID {
			prev := s.todos[i]
			s.todos[i] = cloneTodo(*item)
			if err := saveDocument(s.todosPath, s.todos); err != nil {
				s.todos[i] = prev
				return fmt.Errorf("jsonfile: persisting todo item: %w", err)
			}
			return nil
		}
	}
	return apperror.NotFound("todo item", strconv.Itoa(item.ID))
}

// DeleteTodo removes the record whose (id, userID) matches, preserving
// the order of everything else, then rewrites the document.
func (s *Store) DeleteTodo(_ context.Context, userID, id int) error {
	s.todoMu.Lock()
	defer s.todoMu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == id && s.todos[i].UserID == userID {
			prev := s.todos[i]
			s.todos = slices.Delete(s.todos, i, i+1)
			if err := saveDocument(s.todosPath, s.todos); err != nil {
				s.todos = slices.Insert(s.todos, i, prev)
				return fmt.Errorf("jsonfile: persisting todo item: %w", err)
			}
			return nil
		}
	}
	return apperror.NotFound("todo item", strconv.Itoa(id))
}

// cloneTodo copies an item including its Tags backing array, so records
// handed out (or taken in) never alias the store's own slices.
func cloneTodo(item model.TodoItem) model.TodoItem {
	item.Tags = slices.Clone(item.Tags)
	return item
}
