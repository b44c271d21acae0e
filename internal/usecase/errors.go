package usecase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/hiremind/hiremind-api/internal/util"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	// ErrIncompleteJob aborts a status change whose notice cannot be composed.
	ErrIncompleteJob = service.ErrIncompleteJob
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// parseID treats a malformed id as an unknown record.
func parseID(what, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, validationError("%s id is required", what)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", what, raw, ErrNotFound)
	}
	return id, nil
}

// requireFields wraps a per-field FormError in ErrValidation.
func requireFields(fields map[string]string) error {
	if ferr := util.RequireFields(fields); ferr != nil {
		return fmt.Errorf("%w: %w", ErrValidation, ferr)
	}
	return nil
}
