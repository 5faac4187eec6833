package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type stubWatcher struct {
	watchErrs []error
	calls     int
	keys      []string
}

func (s *stubWatcher) Get(ctx context.Context, key string) *redis.StringCmd {
	s.keys = append(s.keys, key)
	return redis.NewStringResult("", redis.Nil)
}

func (s *stubWatcher) Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	s.keys = append(s.keys, keys...)
	s.calls++
	if s.calls > len(s.watchErrs) {
		return nil
	}
	return s.watchErrs[s.calls-1]
}

func (s *stubWatcher) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func keepCurrent(current []byte) ([]byte, error) { return current, nil }

func TestRedisMutateGivesUpAfterRepeatedConflicts(t *testing.T) {
	stub := &stubWatcher{watchErrs: []error{
		redis.TxFailedErr, redis.TxFailedErr, redis.TxFailedErr, redis.TxFailedErr, redis.TxFailedErr,
	}}
	backend := NewRedisBackend(stub, "portal:")

	err := backend.Mutate(context.Background(), KeyUsers, keepCurrent)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if stub.calls != redisMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", redisMaxAttempts, stub.calls)
	}
	if stub.keys[0] != "portal:app_users" {
		t.Fatalf("unexpected watched key %q", stub.keys[0])
	}
}

func TestRedisMutateRetriesUntilCommit(t *testing.T) {
	stub := &stubWatcher{watchErrs: []error{redis.TxFailedErr, redis.TxFailedErr}}
	backend := NewRedisBackend(stub, "")

	if err := backend.Mutate(context.Background(), KeyContent, keepCurrent); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestRedisMutatePropagatesOtherErrors(t *testing.T) {
	boom := errors.New("conexão recusada")
	stub := &stubWatcher{watchErrs: []error{boom}}
	backend := NewRedisBackend(stub, "")

	if err := backend.Mutate(context.Background(), KeyUsers, keepCurrent); !errors.Is(err, boom) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", stub.calls)
	}
}

func TestRedisLoadMissingKeyIsEmpty(t *testing.T) {
	stub := &stubWatcher{}
	store := NewStore(NewRedisBackend(stub, "portal:"))

	users, err := store.ListUsers(context.Background())
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty collection, got %v (%v)", users, err)
	}
	if stub.keys[0] != "portal:app_users" {
		t.Fatalf("unexpected key %q", stub.keys[0])
	}
}
