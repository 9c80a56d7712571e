package ledger

import (
	"errors"

	"github.com/homeshare/backend/internal/domain/shared"
)

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
