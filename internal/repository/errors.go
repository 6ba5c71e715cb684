package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidArgument indicates the store rejected a malformed identifier.
var ErrInvalidArgument = errors.New("repository: invalid argument")
