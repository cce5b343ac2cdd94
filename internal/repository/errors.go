// Package repository defines the persistence interfaces for the store and
// their MongoDB implementations. Sentinel errors declared here are reused
// across repositories so handlers can map failure scenarios to HTTP
// responses without inspecting driver error strings.
package repository

import "errors"

// ErrNotFound is returned when a referenced document does not exist.
// Handlers translate this into a 404 (or 400 on routes that treat a
// missing reference as a bad request).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that already
// belongs to a verified account. Handlers translate this into HTTP 400
// with a duplicate-key message.
var ErrEmailExists = errors.New("email already exists")
