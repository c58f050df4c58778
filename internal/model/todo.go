package model

import "time"

// Default values applied to a TodoItem at creation time.
const (
	// StatusNew is the status every freshly created item starts in.
	// Status is free-form — the store never validates transitions —
	// but this is the documented default.
	StatusNew = "new"
)

// TodoItem represents a single todo entry owned by exactly one user.
//
// The `json:"..."` tags serve double duty here: they are both the API wire
// format AND the on-disk format of todo-items.json. The two are identical
// on purpose — the persisted document is just the collection serialized.
//
// WHY POINTERS FOR DueDate AND Reminder?
// Both fields are optional and must serialize as JSON null when unset.
// A plain time.Time has no "absent" state (its zero value marshals as
// "0001-01-01T00:00:00Z"), so we use *time.Time: nil → null.
//
// WHY Tags []string (not *[]string)?
// An empty tag list and an absent tag list mean the same thing, so the
// nil slice is a fine zero value. The service normalises nil → [] before
// saving so the document always carries an array.
type TodoItem struct {
	ID       int        `json:"id"`
	Text     string     `json:"text"`
	Done     bool       `json:"done"`
	Status   string     `json:"status"`
	DueDate  *time.Time `json:"dueDate"`
	Tags     []string   `json:"tags"`
	Reminder *time.Time `json:"reminder"`
	UserID   int        `json:"userId"` // owner; always set from the authenticated caller
}
