// Package jsonfile implements the repository interfaces over two flat
// JSON documents: users.json and todo-items.json.
//
// HOW THIS STORE WORKS:
// Both documents are read fully into memory at startup. Reads are served
// from the in-memory slices; every mutation rewrites the owning document
// in full, synchronously, before the call returns. There is no journal,
// no partial write, no compaction — the document IS the database.
//
// That sounds primitive, and it is, but it's the documented contract of
// this service: deployments already have these documents on disk, hand
// edit them, and back them up with cp. The sqlite package exists for
// installations that outgrow it.
//
// STARTUP BEHAVIOUR:
//   - Document absent  → created as an empty array (first run)
//   - Document present but unreadable/corrupt → New returns an error and
//     the server refuses to start. Silently treating a corrupt document
//     as empty would "lose" every record the next time a mutation
//     rewrites the file.
//
// CONCURRENCY:
// One RWMutex per document serialises id assignment, the slice mutation,
// and the file rewrite. Two concurrent creates can no longer mint the
// same id — whichever takes the lock second sees the first one's append.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nmelnikov5/task-manager/internal/model"
)

// Document file names, fixed by the on-disk contract.
const (
	usersFile = "users.json"
	todosFile = "todo-items.json"
)

// Store holds both collections and implements repository.UserRepository
// and repository.TodoRepository.
type Store struct {
	usersPath string
	todosPath string

	userMu sync.RWMutex
	users  []model.User

	todoMu sync.RWMutex
	todos []model.TodoItem
}

// New opens (or initialises) the two documents under dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data dir %s: %w", dataDir, err)
	}

	s := &Store{
		usersPath: filepath.Join(dataDir, usersFile),
		todosPath: filepath.Join(dataDir, todosFile),
	}

	var err error
	if s.users, err = loadDocument[model.User](s.usersPath); err != nil {
		return nil, fmt.Errorf("jsonfile: loading %s: %w", usersFile, err)
	}
	if s.todos, err = loadDocument[model.TodoItem](s.todosPath); err != nil {
		return nil, fmt.Errorf("jsonfile: loading %s: %w", todosFile, err)
	}

	return s, nil
}

// loadDocument reads a JSON array document into a slice.
// A missing file is not an error — it's a first run, so we create the
// file as an empty array (matching what every later rewrite will produce)
// and return an empty slice.
func loadDocument[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if werr := os.WriteFile(path, []byte("[]"), 0644); werr != nil {
			return nil, fmt.Errorf("initialising %s: %w", path, werr)
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// saveDocument rewrites a document from the given slice.
//
// MarshalIndent keeps the file diffable and hand-editable — the same
// two-space indentation the documents have always used, so a rewrite of
// an untouched collection is byte-identical to the existing file.
func saveDocument[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
