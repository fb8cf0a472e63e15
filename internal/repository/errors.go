// Package repository holds the MySQL data access layer.  The sentinel
// errors below let higher layers such as handlers tell failure scenarios
// apart.  For example, ErrForbidden indicates that the current user is
// not authorized to operate on a resource owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of the
// record's current state (e.g. cancelling a ticket that is already
// cancelled).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key (email, route, coupon code)
// is already taken.
var ErrDuplicate = errors.New("duplicate")

// ErrEmailExists is the ErrDuplicate returned by user registration.
var ErrEmailExists = errors.New("email already exists")

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
