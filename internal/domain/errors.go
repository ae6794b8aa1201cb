package domain

import "errors"

// Типовые ошибки ядра. Вызывающий код ветвится по errors.Is/errors.As,
// а не по тексту сообщения.
var (
	ErrCompanyNotFound       = errors.New("company not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrFeedbackNotFound      = errors.New("feedback not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrLedgerContention      = errors.New("ledger append retry budget exhausted")
	ErrFollowUpPublish       = errors.New("follow-up publish failed")
)

// ValidationError описывает ошибку структурной проверки входных данных.
// Такая ошибка всегда на стороне клиента и не оставляет побочных эффектов.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
