package domain

import "errors"

// ErrIncompleteIdentity reports an attempt to build an identity without the
// fields every consumer relies on.
var ErrIncompleteIdentity = errors.New("identity requires id and email")

// Identity is the trusted view of the caller, valid for a single request.
// It is only ever constructed after a verification step succeeded.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// NewIdentity builds a fully populated identity. Producers must supply id and
// email; an empty role falls back to DefaultUserRole.
func NewIdentity(id, email, name, role string) (*Identity, error) {
	if id == "" || email == "" {
		return nil, ErrIncompleteIdentity
	}
	if role == "" {
		role = DefaultUserRole
	}
	return &Identity{ID: id, Email: email, Name: name, Role: role}, nil
}
