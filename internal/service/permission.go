package service

import (
	"errors"
	"fmt"

	"github.com/sfdportal/portal/internal/repo"
)

var (
	// ErrPermissionDenied indica ausência da permissão exigida.
	ErrPermissionDenied = errors.New("sem permissão para esta operação")
)

// Has informa se a conta pode executar a operação protegida pela permissão.
// Colaboradores nunca passam; super administradores sempre passam.
func Has(user repo.User, capability repo.Capability) bool {
	if user.Role != repo.RoleAdmin {
		return false
	}
	if user.SuperAdmin {
		return true
	}
	if user.Permissions == nil {
		return false
	}
	return user.Permissions.Has(capability)
}

// Require devolve ErrPermissionDenied quando a conta não possui a permissão.
func Require(user repo.User, capability repo.Capability) error {
	if !Has(user, capability) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, capability)
	}
	return nil
}

// requireAdmin exige papel administrativo, sem permissão específica.
func requireAdmin(user repo.User) error {
	if !user.IsAdmin() {
		return fmt.Errorf("%w: acesso restrito a administradores", ErrPermissionDenied)
	}
	return nil
}
