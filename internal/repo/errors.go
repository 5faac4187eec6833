package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrConflict indica que a coleção foi alterada por outra escrita concorrente.
	ErrConflict = errors.New("coleção alterada concorrentemente")
)
