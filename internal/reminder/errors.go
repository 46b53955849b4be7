package reminder

import (
	"errors"
	"fmt"
)

// User-facing domain failures. Anything else surfaced by the service
// is a persistence problem.
var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrMedicineNotFound = errors.New("medicine not found")
)

// InsufficientQuantityError reports a dose larger than the remaining
// stock. The quantity is left untouched.
type InsufficientQuantityError struct {
	Remaining int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity, remaining %d", e.Remaining)
}
