package readiness

import (
	"errors"

	"releasegate/internal/errs"
)

var (
	ErrVersionTagRequired = errors.New("version tag is required")
	ErrInitiatorRequired  = errors.New("initiated-by email is required")
	ErrGateKeyRequired    = errors.New("gate key is required")
	ErrInvalidGateStatus  = errors.New("invalid gate status")
	ErrInvalidRunStatus   = errors.New("invalid run status")
	ErrInvalidTransition  = errors.New("invalid run status transition")

	ErrSlugRequired        = errors.New("checklist slug is required")
	ErrTitleRequired       = errors.New("checklist title is required")
	ErrChecklistSlugExists = errors.New("checklist slug already exists")
)

// IsValidation reports whether err is an input validation failure rather
// than a storage or internal error.
func IsValidation(err error) bool {
	return errs.IsAny(err,
		ErrVersionTagRequired,
		ErrInitiatorRequired,
		ErrGateKeyRequired,
		ErrInvalidGateStatus,
		ErrInvalidRunStatus,
		ErrInvalidTransition,
		ErrSlugRequired,
		ErrTitleRequired,
		ErrChecklistSlugExists,
	)
}
