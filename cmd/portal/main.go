package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/config"
	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	ctx := context.Background()

	resources, err := repo.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível abrir o armazenamento")
	}
	defer resources.Close()

	accounts := service.NewAccountService(resources.Store, nil, service.BootstrapOptions{
		AdminPassword:      cfg.Bootstrap.AdminPassword,
		SuperAdminPassword: cfg.Bootstrap.SuperAdminPassword,
	})

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "bootstrap":
		err = accounts.Bootstrap(ctx)
	case "create-user":
		err = runCreateUser(ctx, resources.Store, accounts, args)
	case "create-admin":
		err = runCreateAdmin(ctx, resources.Store, accounts, args)
	case "list-users":
		err = runListUsers(ctx, resources.Store, args)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("comando falhou")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "portal CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  portal bootstrap")
	fmt.Fprintln(os.Stderr, "  portal create-user --id 12345 [--id-type matricula|cpf] [--cpf 11122233344]")
	fmt.Fprintln(os.Stderr, "  portal create-admin --username rh --password segredo [--permissions createUsers,createContent]")
	fmt.Fprintln(os.Stderr, "  portal list-users [--role USER|ADMIN]")
}

// operator devolve o administrador embutido, garantindo-o antes.
// A busca é pelo login, como na reconciliação; o id pode variar entre bases antigas.
func operator(ctx context.Context, store *repo.Store, accounts *service.AccountService) (repo.User, error) {
	if err := accounts.Bootstrap(ctx); err != nil {
		return repo.User{}, err
	}
	admin, err := store.FindUserByUsername(ctx, service.DefaultAdminUsername)
	if err != nil {
		return repo.User{}, fmt.Errorf("carregar %s: %w", service.DefaultAdminUsername, err)
	}
	return admin, nil
}

func runCreateUser(ctx context.Context, store *repo.Store, accounts *service.AccountService, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		id     = fs.String("id", "", "matrícula ou CPF do colaborador")
		idType = fs.String("id-type", string(repo.IDTypeMatricula), "matricula ou cpf")
		cpf    = fs.String("cpf", "", "CPF opcional; quando informado vira o login")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("--id é obrigatório")
	}

	actor, err := operator(ctx, store, accounts)
	if err != nil {
		return err
	}

	user, message, err := accounts.CreateUserForEmployee(ctx, actor, service.EmployeeInput{
		Identifier: *id,
		IDType:     repo.IDType(*idType),
		CPF:        *cpf,
	})
	if err != nil {
		return err
	}

	fmt.Println(message)
	return printJSON(user.Public())
}

func runCreateAdmin(ctx context.Context, store *repo.Store, accounts *service.AccountService, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		username    = fs.String("username", "", "login do administrador")
		password    = fs.String("password", "", "senha do administrador")
		permissions = fs.String("permissions", "", "permissões separadas por vírgula")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	perms, err := parsePermissions(*permissions)
	if err != nil {
		return err
	}

	actor, err := operator(ctx, store, accounts)
	if err != nil {
		return err
	}

	admin, err := accounts.CreateAdmin(ctx, actor, *username, *password, perms)
	if err != nil {
		return err
	}
	return printJSON(admin.Public())
}

func parsePermissions(raw string) (repo.CapabilitySet, error) {
	var caps []repo.Capability
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c, ok := repo.ParseCapability(name)
		if !ok {
			return 0, fmt.Errorf("permissão desconhecida: %s", name)
		}
		caps = append(caps, c)
	}
	return repo.NewCapabilitySet(caps...), nil
}

func runListUsers(ctx context.Context, store *repo.Store, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	role := fs.String("role", "", "filtra por papel (USER ou ADMIN)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}

	out := make([]repo.User, 0, len(users))
	for _, u := range users {
		if *role != "" && !strings.EqualFold(string(u.Role), *role) {
			continue
		}
		out = append(out, u.Public())
	}

	if len(out) == 0 {
		fmt.Println("nenhum usuário cadastrado")
		return nil
	}
	return printJSON(out)
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
