package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

var _ repository.TodoRepository = (*DB)(nil)

// ListTodos returns the user's items ordered by id — ids are assigned
// sequentially, so id order IS insertion order, matching the jsonfile
// store's document order.
func (db *DB) ListTodos(ctx context.Context, userID int) ([]model.TodoItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, text, done, status, due_date, tags, reminder, user_id
		 FROM todo_items
		 WHERE user_id = ?
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing todo items: %w", err)
	}
	// sql.Rows holds a pooled connection — always close it.
	defer rows.Close()

	items := []model.TodoItem{}
	for rows.Next() {
		item, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning todo item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating todo items: %w", err)
	}

	return items, nil
}

// CreateTodo inserts the item and reads back the id SQLite assigned.
func (db *DB) CreateTodo(ctx context.Context, item *model.TodoItem) error {
	tags, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO todo_items (text, done, status, due_date, tags, reminder, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Text, item.Done, item.Status, item.DueDate, tags, item.Reminder, item.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating todo item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new todo id: %w", err)
	}
	item.ID = int(id)

	return nil
}

// GetTodo fetches by (id, user_id) together — the WHERE clause is the
// ownership check, so a foreign item is indistinguishable from a missing
// one.
func (db *DB) GetTodo(ctx context.Context, userID, id int) (*model.TodoItem, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, text, done, status, due_date, tags, reminder, user_id
		 FROM todo_items
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	item, err := scanTodo(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("todo item", strconv.Itoa(id))
		}
		return nil, fmt.Errorf("sqlite: getting todo item %d: %w", id, err)
	}
	return item, nil
}

// UpdateTodo rewrites every mutable column of the row matching
// (id, user_id). RowsAffected == 0 means the ownership-combined lookup
// missed → NotFound.
func (db *DB) UpdateTodo(ctx context.Context, item *model.TodoItem) error {
	tags, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE todo_items
		 SET text = ?, done = ?, status = ?, due_date = ?, tags = ?, reminder = ?
		 WHERE id = ? AND user_id = ?`,
		item.Text, item.Done, item.Status, item.DueDate, tags, item.Reminder,
		item.ID, item.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating todo item %d: %w", item.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of todo item %d: %w", item.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("todo item", strconv.Itoa(item.ID))
	}

	return nil
}

// DeleteTodo removes the row matching (id, user_id), NotFound on a miss.
func (db *DB) DeleteTodo(ctx context.Context, userID, id int) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM todo_items WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting todo item %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of todo item %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("todo item", strconv.Itoa(id))
	}

	return nil
}

// scanTodo reads one row into a TodoItem. It takes the Scan func rather
// than *sql.Row / *sql.Rows so the same code serves both.
func scanTodo(scan func(...any) error) (*model.TodoItem, error) {
	var (
		item     model.TodoItem
		dueDate  sql.NullTime
		reminder sql.NullTime
		tags     string
	)
	if err := scan(
		&item.ID, &item.Text, &item.Done, &item.Status,
		&dueDate, &tags, &reminder, &item.UserID,
	); err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t := dueDate.Time
		item.DueDate = &t
	}
	if reminder.Valid {
		t := reminder.Time
		item.Reminder = &t
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags column: %w", err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	return &item, nil
}

// encodeTags serialises the tag list for the TEXT column, normalising
// nil to an empty array.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(data), nil
}
