// Package session persists bearer token sessions in a pluggable storage
// backend. A session binds an opaque token to the authenticated user id.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/storage"

	"github.com/taskery/taskery/internal/uniuri"
)

// ErrStorageNil is returned when the session storage was not initialized.
var ErrStorageNil = errors.New("session storage is nil")

// store is the global session storage instance.
var store storage.Storage //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	UserID uint64
	Email  string
}

// Init initializes the session store with the provided storage backend.
func Init(backend storage.Storage) {
	if backend == nil {
		panic("storage is nil")
	}

	store = backend
}

// Write writes the session data for the given token with an expiration duration.
func (s *Data) Write(token string, exp time.Duration) error {
	if store == nil {
		return ErrStorageNil
	}

	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return store.Set(token, out, exp)
}

// Read reads the session data for the given token.
func (s *Data) Read(token string) error {
	if store == nil {
		return ErrStorageNil
	}

	byteData, err := store.Get(token)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return errors.New("session not found")
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session for the given token.
func Delete(token string) error {
	if store == nil {
		return ErrStorageNil
	}

	return store.Delete(token)
}

// GenerateToken generates a new secure random bearer token.
func GenerateToken() string {
	return uniuri.NewLen(uniuri.TokenLen)
}
