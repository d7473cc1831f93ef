package storage

import "errors"

// ErrUsernameTaken is returned when creating a user with a username
// that already exists.
var ErrUsernameTaken = errors.New("username already taken")

// NotFoundError is returned when a user, content item, or share link
// doesn't exist in the store (or isn't visible to the caller).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}

	return e.Kind + " not found: " + e.ID
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
