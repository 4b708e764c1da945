package ledger

import "github.com/nepal-lottery/lottery-backend/internal/apperrors"

// The ledger reports failures with the application's shared error kinds.
type (
	ValidationError = apperrors.ValidationError
	NotFoundError   = apperrors.NotFoundError
	StorageError    = apperrors.StorageError
)
