package coordinator

import "errors"

// Ошибки клиента coordinator'а.
var (
	// ErrUnavailable — coordinator недоступен (транспортная ошибка).
	ErrUnavailable = errors.New("coordinator unavailable")

	// ErrBadStatus — coordinator ответил HTTP-ошибкой.
	ErrBadStatus = errors.New("coordinator returned error status")

	// ErrNotConfirmed — HTTP-успех без логического success в теле.
	ErrNotConfirmed = errors.New("coordinator did not confirm")
)
