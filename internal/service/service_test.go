package service

import (
	"context"
	"testing"
	"time"

	"github.com/sfdportal/portal/internal/auth"
	"github.com/sfdportal/portal/internal/repo"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store    *repo.Store
	accounts *AccountService
	content  *ContentService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store := repo.NewStore(repo.NewMemoryBackend())
	accounts := NewAccountService(store, auth.NewJWTManager(testSecret, time.Hour), BootstrapOptions{
		AdminPassword:      "admin",
		SuperAdminPassword: "Coutinho@89",
	})
	if err := accounts.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return testEnv{store: store, accounts: accounts, content: NewContentService(store)}
}

func (e testEnv) login(t *testing.T, username, password string) repo.User {
	t.Helper()
	res, err := e.accounts.Authenticate(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return res.User
}

func (e testEnv) createUser(t *testing.T, username string) repo.User {
	t.Helper()
	user, err := e.accounts.Create(context.Background(), CreateAccountInput{Username: username, IDType: repo.IDTypeMatricula, Role: repo.RoleUser})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return *user
}

func (e testEnv) createAdmin(t *testing.T, username string, caps ...repo.Capability) repo.User {
	t.Helper()
	perms := repo.NewCapabilitySet(caps...)
	user, err := e.accounts.Create(context.Background(), CreateAccountInput{
		Username:    username,
		Role:        repo.RoleAdmin,
		Password:    "pw-" + username,
		Permissions: &perms,
	})
	if err != nil {
		t.Fatalf("create admin %s: %v", username, err)
	}
	return *user
}
