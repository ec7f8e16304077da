package services

import (
	"errors"
	"fmt"

	"competition-system/database"
)

// Error kinds. Callers branch on them with errors.Is; anything else is an unexpected failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	ErrUserNotFound          = kindError(ErrNotFound, "user not found")
	ErrUsernameTaken         = kindError(ErrConflict, "username already registered")
	ErrCompetitionNotFound   = kindError(ErrNotFound, "competition not found")
	ErrCompetitionNameTaken  = kindError(ErrConflict, "competition name already exists")
	ErrContributionNotFound  = kindError(ErrNotFound, "contribution not found")
	ErrContributionExists    = kindError(ErrConflict, "contribution already exists for this competition and mode")
	ErrNoPartialContribution = kindError(ErrNotFound, "competition has no partial contribution to register against")
	ErrParticipantNotFound   = kindError(ErrNotFound, "participant not found")
	ErrEmailTaken            = kindError(ErrConflict, "email already registered")
	ErrPaymentExists         = kindError(ErrConflict, "payment already recorded for this contribution")
	ErrComplexNotFound       = kindError(ErrNotFound, "complex not found")
	ErrVideoNotFound         = kindError(ErrNotFound, "qualifying video not found")
	ErrVideoExists           = kindError(ErrConflict, "qualifying video already recorded for this complex and participant")
	ErrResultExists          = kindError(ErrConflict, "result already recorded for this complex and participant")
	ErrInvalidMode           = kindError(ErrInvalidValue, "mode must be full or partial")
	ErrInvalidView           = kindError(ErrInvalidValue, "view must be one of kg, meters, min, reps, cl")
	ErrInvalidStatus         = kindError(ErrInvalidValue, "qualifier_status must be qualified or unqualified")
	ErrPasswordTooLong       = kindError(ErrInvalidValue, "password must be at most 72 bytes")
)

type serviceError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }

// constraintErrors maps constraint names to the error a particular write reports.
type constraintErrors map[string]error

// translate turns a storage error into one of the error kinds. Known constraints map to
// their specific error; other violations fall back on the SQLSTATE class. Values the
// column cannot hold are ErrInvalidValue.
func translate(err error, known constraintErrors) error {
	if err == nil {
		return nil
	}
	if v, ok := database.AsViolation(err); ok {
		if mapped, ok := known[v.Constraint]; ok {
			return mapped
		}
		switch v.Code {
		case database.CodeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, v.Constraint)
		case database.CodeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, v.Constraint)
		default:
			return fmt.Errorf("%w: %s", ErrInvalidValue, v.Constraint)
		}
	}
	if msg, ok := database.AsDataException(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidValue, msg)
	}
	if database.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
