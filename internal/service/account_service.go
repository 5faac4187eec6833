package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/auth"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/util"
)

var (
	// ErrDuplicateUsername indica login já utilizado por outra conta.
	ErrDuplicateUsername = errors.New("usuário já existe")
	// ErrUserNotFound indica login ou id inexistente.
	ErrUserNotFound = errors.New("Usuário não encontrado.")
	// ErrWrongPassword indica senha divergente da cadastrada.
	ErrWrongPassword = errors.New("Senha incorreta.")
	// ErrFirstAccessPasswordTooShort indica senha curta demais no primeiro acesso.
	ErrFirstAccessPasswordTooShort = errors.New("Para criar sua senha, use no mínimo 4 caracteres.")
	// ErrMissingRequiredField indica campo obrigatório vazio; o nome do campo segue no erro.
	ErrMissingRequiredField = errors.New("campo obrigatório não informado")
	// ErrAdminPasswordRequired indica administrador sem senha.
	ErrAdminPasswordRequired = errors.New("administradores precisam de senha")
	// ErrProtectedAccount indica tentativa de remover conta embutida.
	ErrProtectedAccount = errors.New("conta protegida não pode ser removida")
	// ErrInvalidIDType indica tipo de identificador desconhecido.
	ErrInvalidIDType = errors.New("tipo de identificador inválido")
	// ErrInvalidRole indica papel desconhecido.
	ErrInvalidRole = errors.New("papel inválido")
)

// Destinos sugeridos após o login.
const (
	NextAdmin        = "admin"
	NextRegistration = "registration"
	NextContent      = "content"
)

type accountStore interface {
	ListUsers(ctx context.Context) ([]repo.User, error)
	FindUserByUsername(ctx context.Context, username string) (repo.User, error)
	FindUserByID(ctx context.Context, id string) (repo.User, error)
	MutateUsers(ctx context.Context, fn func(users []repo.User) ([]repo.User, error)) error
	DeleteUser(ctx context.Context, id string) error
}

// AccountService concentra criação, login, cadastro e gestão de contas.
type AccountService struct {
	store     accountStore
	jwt       *auth.JWTManager
	bootstrap BootstrapOptions
}

// NewAccountService cria novo serviço.
func NewAccountService(store *repo.Store, jwtMgr *auth.JWTManager, opts BootstrapOptions) *AccountService {
	return &AccountService{store: store, jwt: jwtMgr, bootstrap: opts}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AccountService) JWT() *auth.JWTManager {
	return s.jwt
}

// CreateAccountInput reúne os dados de criação de conta.
type CreateAccountInput struct {
	Username    string
	IDType      repo.IDType
	Role        repo.Role
	Password    string
	Permissions *repo.CapabilitySet
	SecondaryID string
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	User        repo.User
	Next        string
	AccessToken string
	ExpiresAt   time.Time
}

// Bootstrap aplica Reconcile sobre a coleção persistida.
func (s *AccountService) Bootstrap(ctx context.Context) error {
	err := s.store.MutateUsers(ctx, func(users []repo.User) ([]repo.User, error) {
		return Reconcile(users, s.bootstrap), nil
	})
	if err != nil {
		return fmt.Errorf("reconciliar contas embutidas: %w", err)
	}
	log.Info().Msg("contas embutidas reconciliadas")
	return nil
}

// Create grava uma nova conta garantindo login único.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*repo.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: usuário", ErrMissingRequiredField)
	}

	idType := in.IDType
	if idType == "" {
		idType = repo.IDTypeMatricula
	}
	if !idType.Valid() {
		return nil, ErrInvalidIDType
	}

	user := repo.User{
		ID:       util.NewID(),
		Username: username,
		IDType:   idType,
		Password: in.Password,
		Role:     in.Role,
	}

	switch in.Role {
	case repo.RoleUser:
		user.IsFirstAccess = true
		if secondary := strings.TrimSpace(in.SecondaryID); secondary != "" {
			user.PersonalData = &repo.PersonalData{SecondaryID: secondary}
		}
	case repo.RoleAdmin:
		if in.Password == "" {
			return nil, ErrAdminPasswordRequired
		}
		perms := repo.CapabilitySet(0)
		if in.Permissions != nil {
			perms = *in.Permissions
		}
		user.Permissions = &perms
	default:
		return nil, ErrInvalidRole
	}

	err := s.store.MutateUsers(ctx, func(users []repo.User) ([]repo.User, error) {
		for _, existing := range users {
			if existing.Username == username {
				return nil, ErrDuplicateUsername
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("conta criada")
	return &user, nil
}

// Authenticate valida login e senha. No primeiro acesso a senha informada passa a ser a senha da conta.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsFirstAccess {
		if util.PasswordTooShort(password) {
			return nil, ErrFirstAccessPasswordTooShort
		}
		user, err = s.setFirstAccessPassword(ctx, user.ID, password)
		if err != nil {
			return nil, err
		}
	} else if user.Password != password {
		log.Warn().Str("user_id", user.ID).Msg("senha incorreta")
		return nil, ErrWrongPassword
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:        user,
		Next:        NextDestination(user),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// setFirstAccessPassword grava a senha escolhida; se o cadastro já foi concluído
// entre a leitura e a escrita, volta a comparar a senha existente.
func (s *AccountService) setFirstAccessPassword(ctx context.Context, userID, password string) (repo.User, error) {
	var updated repo.User
	err := s.store.MutateUsers(ctx, func(users []repo.User) ([]repo.User, error) {
		for i := range users {
			if users[i].ID != userID {
				continue
			}
			if users[i].IsFirstAccess {
				users[i].Password = password
			} else if users[i].Password != password {
				return nil, ErrWrongPassword
			}
			updated = users[i]
			return users, nil
		}
		return nil, ErrUserNotFound
	})
	return updated, err
}

// NextDestination indica para onde a conta segue após o login.
func NextDestination(user repo.User) string {
	if user.IsAdmin() {
		return NextAdmin
	}
	if user.IsFirstAccess || user.PersonalData == nil {
		return NextRegistration
	}
	return NextContent
}

// CompleteRegistration substitui o cadastro pessoal e encerra o primeiro acesso.
func (s *AccountService) CompleteRegistration(ctx context.Context, userID string, data repo.PersonalData) (*repo.User, error) {
	var updated repo.User
	err := s.store.MutateUsers(ctx, func(users []repo.User) ([]repo.User, error) {
		for i := range users {
			if users[i].ID != userID {
				continue
			}
			pd := data
			users[i].PersonalData = &pd
			users[i].IsFirstAccess = false
			updated = users[i]
			return users, nil
		}
		return nil, ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID).Msg("cadastro concluído")
	return &updated, nil
}

// Me devolve a conta autenticada.
func (s *AccountService) Me(ctx context.Context, userID string) (*repo.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmployeeInput corresponde ao formulário de cadastro de colaborador do painel.
type EmployeeInput struct {
	Identifier string
	IDType     repo.IDType
	CPF        string
}

// CreateUserForEmployee cria o colaborador decidindo o login a partir de matrícula e CPF.
// Devolve também a mensagem que o administrador repassa ao funcionário.
func (s *AccountService) CreateUserForEmployee(ctx context.Context, actor repo.User, in EmployeeInput) (*repo.User, string, error) {
	if err := Require(actor, repo.CapCreateUsers); err != nil {
		return nil, "", err
	}

	identifier := strings.TrimSpace(in.Identifier)
	cpf := strings.TrimSpace(in.CPF)
	if identifier == "" {
		return nil, "", fmt.Errorf("%w: identificador", ErrMissingRequiredField)
	}

	input := CreateAccountInput{Username: identifier, IDType: in.IDType, Role: repo.RoleUser}
	var message string
	switch {
	case in.IDType == repo.IDTypeMatricula && cpf != "":
		input.Username = cpf
		input.IDType = repo.IDTypeCPF
		input.SecondaryID = identifier
		message = fmt.Sprintf("Usuário criado! Login será pelo CPF (%s). Matrícula %s vinculada.", cpf, identifier)
	case in.IDType == repo.IDTypeMatricula:
		message = fmt.Sprintf("Usuário criado! INFORME AO FUNCIONÁRIO: Login via Matrícula (%s).", identifier)
	default:
		message = fmt.Sprintf("Usuário criado! Login via CPF (%s).", identifier)
	}

	user, err := s.Create(ctx, input)
	if err != nil {
		return nil, "", err
	}
	return user, message, nil
}

// CreateAdmin cria administrador com as permissões escolhidas.
func (s *AccountService) CreateAdmin(ctx context.Context, actor repo.User, username, password string, perms repo.CapabilitySet) (*repo.User, error) {
	if err := Require(actor, repo.CapManageAdmins); err != nil {
		return nil, err
	}
	if field, ok := util.FirstBlank([2]string{"usuário", username}, [2]string{"senha", password}); ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, field)
	}
	return s.Create(ctx, CreateAccountInput{
		Username:    username,
		IDType:      repo.IDTypeMatricula,
		Role:        repo.RoleAdmin,
		Password:    password,
		Permissions: &perms,
	})
}

// ListUsers devolve os colaboradores na ordem de criação.
func (s *AccountService) ListUsers(ctx context.Context, actor repo.User) ([]repo.User, error) {
	if err := Require(actor, repo.CapViewUsers); err != nil {
		return nil, err
	}
	return s.filterUsers(ctx, func(u repo.User) bool { return u.Role == repo.RoleUser })
}

// ListAdmins devolve os administradores visíveis no painel.
func (s *AccountService) ListAdmins(ctx context.Context, actor repo.User) ([]repo.User, error) {
	if err := Require(actor, repo.CapManageAdmins); err != nil {
		return nil, err
	}
	return s.filterUsers(ctx, func(u repo.User) bool { return u.Role == repo.RoleAdmin && !u.Hidden })
}

func (s *AccountService) filterUsers(ctx context.Context, keep func(repo.User) bool) ([]repo.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repo.User, 0, len(users))
	for _, u := range users {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

// GetUser devolve uma conta para consulta administrativa.
func (s *AccountService) GetUser(ctx context.Context, actor repo.User, userID string) (*repo.User, error) {
	if err := Require(actor, repo.CapViewUsers); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

// DeleteUser remove a conta; contas embutidas são protegidas.
func (s *AccountService) DeleteUser(ctx context.Context, actor repo.User, userID string) error {
	if err := Require(actor, repo.CapDeleteData); err != nil {
		return err
	}

	target, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if target.SuperAdmin || target.ID == DefaultAdminID {
		return ErrProtectedAccount
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info().Str("user_id", userID).Str("actor_id", actor.ID).Msg("conta removida")
	return nil
}
