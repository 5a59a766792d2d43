package store

import "errors"

// Ошибки хранилища.
var (
	// ErrNotFound — task с таким ID не найден.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyExists — task с таким ID уже есть в хранилище.
	ErrAlreadyExists = errors.New("task already exists")
)
