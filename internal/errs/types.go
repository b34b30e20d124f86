package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// DatabaseError wraps failures from the statistics store.
type DatabaseError struct {
	ErrorMessage
	Operation string
}

// StaleRequestError marks a recompute whose token was superseded before
// its results arrived. Callers discard these silently.
type StaleRequestError struct {
	ErrorMessage
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
	}
}

func NewStaleRequestError() *StaleRequestError {
	return &StaleRequestError{
		ErrorMessage: ErrorMessage{Message: "request superseded"},
	}
}
