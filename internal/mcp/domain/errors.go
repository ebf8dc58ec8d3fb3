package domain

import (
	"fmt"

	apperrors "github.com/fablestack/engine/internal/platform/errors"
)

// toolError projects a domain error onto its gRPC status form before it
// leaves the tool boundary, so callers receive the transport-level class
// and the machine-readable reason alongside the message.
func toolError(op string, err error) error {
	var appErr *apperrors.Error
	if apperrors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", op, appErr.ToGRPCStatus())
	}
	return fmt.Errorf("%s: %w", op, err)
}
