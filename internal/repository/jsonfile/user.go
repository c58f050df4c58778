package jsonfile

import (
	"context"
	"fmt"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// the first call site that passes a *Store where the interface is wanted.
var _ repository.UserRepository = (*Store)(nil)

// CreateUser appends a new account and rewrites users.json.
//
// The username uniqueness check and the id assignment happen under the
// same lock as the append — that's the whole point of the lock. Ids are
// max(existing)+1, not len+1: users are never deleted today, but if one
// ever is, len+1 would re-mint a live id.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	maxID := 0
	for i := range s.users {
		if s.users[i].Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
		if s.users[i].ID > maxID {
			maxID = s.users[i].ID
		}
	}
	user.ID = maxID + 1

	s.users = append(s.users, *user)
	if err := saveDocument(s.usersPath, s.users); err != nil {
		// Roll back the append so memory and disk don't diverge.
		s.users = s.users[:len(s.users)-1]
		return fmt.Errorf("jsonfile: persisting user: %w", err)
	}

	return nil
}

// GetUserByUsername finds an account by exact, case-sensitive username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.userMu.RLock()
	defer s.userMu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == username {
			// Return a copy so callers can't mutate the store's record.
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}
