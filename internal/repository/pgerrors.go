package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

const pgUniqueViolation = "23505"

// uniqueViolation converts a Postgres unique-constraint failure into a conflict whose message
// names the offending field. ok is false for any other error.
func uniqueViolation(err error, values map[string]string) (*appErrors.Error, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgUniqueViolation {
		return nil, false
	}

	var message string
	switch pqErr.Constraint {
	case "users_email_key":
		message = "An account with this email already exists. Try logging in."
	case "departments_code_key":
		message = fmt.Sprintf("A code %q already exists.", values["code"])
	case "departments_name_key":
		message = fmt.Sprintf("A name %q already exists.", values["name"])
	default:
		message = "This record already exists."
	}
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message), true
}
