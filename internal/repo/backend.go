package repo

import (
	"context"
	"sync"
)

// Chaves das duas coleções persistidas.
const (
	KeyUsers   = "app_users"
	KeyContent = "app_content"
)

// Backend guarda cada coleção como um único documento serializado.
// Mutate executa leitura, alteração e escrita da coleção de forma atômica por chave;
// fn pode ser reexecutada quando o backend detecta escrita concorrente.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Ping(ctx context.Context) error
}

// MemoryBackend mantém as coleções em memória; usado em desenvolvimento e testes.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend cria backend vazio.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryBackend) Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.data[key]
	next, err := fn(append([]byte(nil), current...))
	if err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), next...)
	return nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}
