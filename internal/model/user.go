// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// User represents a registered account.
//
// WHY int IDs (not UUIDs or xids)?
// The on-disk user document predates this server: ids are small integers
// assigned as max(existing)+1. Keeping the same scheme means an existing
// users.json keeps working and clients see the ids they already stored.
//
// WHY `json:"-"` ON PasswordHash... is NOT used here:
// The hash must round-trip through users.json, so it needs a JSON tag.
// The API layer never returns a User directly — registration responds with
// a message and login responds with a token — so the hash never reaches a
// client. If a future endpoint returns users, introduce a response DTO
// rather than weakening this struct's persistence contract.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"` // bcrypt output; plaintext is never stored
}
