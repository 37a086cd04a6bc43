// Package repository implements the storage interface over database/sql.
// This file defines sentinel errors shared by the repositories so that
// services and handlers can map failures to responses without string
// matching. Lookups that find nothing return ErrNotFound (handlers
// translate to 404); unique-key violations return ErrDuplicate (409).
// Anything else is a storage fault and surfaces as a generic 500.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a row addressed by id or derived key
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint
// such as users.username or users.email.
var ErrDuplicate = errors.New("duplicate")

// isDuplicateErr detects unique-constraint violations from the MySQL
// driver (error 1062) and from the sqlite driver used in tests.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique")
}
