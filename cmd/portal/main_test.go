package main

import (
	"context"
	"testing"

	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

func TestParsePermissions(t *testing.T) {
	perms, err := parsePermissions("createUsers, viewUsers,,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !perms.Has(repo.CapCreateUsers) || !perms.Has(repo.CapViewUsers) || perms.Has(repo.CapDeleteData) {
		t.Fatalf("unexpected set %v", perms.Names())
	}

	if _, err := parsePermissions("createUsers,root"); err == nil {
		t.Fatalf("expected error for unknown permission")
	}
}

func TestOperatorFindsBuiltInAdminByUsername(t *testing.T) {
	ctx := context.Background()
	store := repo.NewStore(repo.NewMemoryBackend())
	legacy := repo.User{ID: "legado-7", Username: service.DefaultAdminUsername, Password: "antiga", Role: repo.RoleAdmin}
	if err := store.SaveUser(ctx, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}
	accounts := service.NewAccountService(store, nil, service.BootstrapOptions{AdminPassword: "admin", SuperAdminPassword: "super"})

	actor, err := operator(ctx, store, accounts)
	if err != nil {
		t.Fatalf("operator: %v", err)
	}
	if actor.ID != "legado-7" || !actor.SuperAdmin || actor.Password != "antiga" {
		t.Fatalf("unexpected operator %+v", actor)
	}

	if err := runCreateAdmin(ctx, store, accounts, []string{"--username", "rh", "--password", "pw", "--permissions", "createContent"}); err != nil {
		t.Fatalf("create-admin: %v", err)
	}
	created, err := store.FindUserByUsername(ctx, "rh")
	if err != nil || !created.Permissions.Has(repo.CapCreateContent) {
		t.Fatalf("admin not stored: %+v (%v)", created, err)
	}
}
