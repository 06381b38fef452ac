package shortener

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("shortlink not found")
	ErrInvalidURL    = errors.New("url must not be empty")
	ErrDuplicateCode = errors.New("shortlink code already exists")

	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)

// RetryBudgetExhaustedError is returned when every candidate code was already taken.
type RetryBudgetExhaustedError struct {
	Attempts int
}

func (e *RetryBudgetExhaustedError) Error() string {
	return fmt.Sprintf("no free shortlink code after %d attempts", e.Attempts)
}

// Is lets errors.Is match ErrRetryBudgetExhausted.
func (e *RetryBudgetExhaustedError) Is(target error) bool {
	return target == ErrRetryBudgetExhausted
}
