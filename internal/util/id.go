package util

import "github.com/google/uuid"

// NewID gera identificador opaco (UUID v4) para usuários e conteúdos.
func NewID() string {
	return uuid.NewString()
}
