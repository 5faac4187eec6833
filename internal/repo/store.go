package repo

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store expõe as coleções de usuários e conteúdos sobre um Backend.
// Toda operação lê a coleção inteira, altera em memória e grava a coleção inteira.
type Store struct {
	backend Backend
}

// NewStore cria o repositório tipado.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Ping verifica o backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// ListUsers devolve todos os usuários na ordem de criação.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	raw, err := s.backend.Load(ctx, KeyUsers)
	if err != nil {
		return nil, err
	}
	return decodeCollection[User](raw)
}

// FindUserByUsername busca por correspondência exata (sensível a maiúsculas).
func (s *Store) FindUserByUsername(ctx context.Context, username string) (User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// FindUserByID busca pelo identificador opaco.
func (s *Store) FindUserByID(ctx context.Context, id string) (User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// MutateUsers aplica fn sobre a coleção de usuários de forma atômica.
func (s *Store) MutateUsers(ctx context.Context, fn func(users []User) ([]User, error)) error {
	return s.backend.Mutate(ctx, KeyUsers, func(current []byte) ([]byte, error) {
		users, err := decodeCollection[User](current)
		if err != nil {
			return nil, err
		}
		next, err := fn(users)
		if err != nil {
			return nil, err
		}
		return encodeCollection(next)
	})
}

// SaveUser substitui o registro com o mesmo id ou o acrescenta ao fim.
func (s *Store) SaveUser(ctx context.Context, user User) error {
	return s.MutateUsers(ctx, func(users []User) ([]User, error) {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = user
				return users, nil
			}
		}
		return append(users, user), nil
	})
}

// DeleteUser remove o usuário; ErrNotFound quando ausente.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.MutateUsers(ctx, func(users []User) ([]User, error) {
		out := users[:0]
		found := false
		for _, u := range users {
			if u.ID == id {
				found = true
				continue
			}
			out = append(out, u)
		}
		if !found {
			return nil, ErrNotFound
		}
		return out, nil
	})
}

// ListContent devolve os conteúdos, mais recentes primeiro.
func (s *Store) ListContent(ctx context.Context) ([]Content, error) {
	raw, err := s.backend.Load(ctx, KeyContent)
	if err != nil {
		return nil, err
	}
	return decodeCollection[Content](raw)
}

// FindContent busca conteúdo pelo id.
func (s *Store) FindContent(ctx context.Context, id string) (Content, error) {
	list, err := s.ListContent(ctx)
	if err != nil {
		return Content{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return Content{}, ErrNotFound
}

// MutateContent aplica fn sobre a coleção de conteúdos de forma atômica.
func (s *Store) MutateContent(ctx context.Context, fn func(list []Content) ([]Content, error)) error {
	return s.backend.Mutate(ctx, KeyContent, func(current []byte) ([]byte, error) {
		list, err := decodeCollection[Content](current)
		if err != nil {
			return nil, err
		}
		next, err := fn(list)
		if err != nil {
			return nil, err
		}
		return encodeCollection(next)
	})
}

// PrependContent insere o conteúdo no topo da coleção.
func (s *Store) PrependContent(ctx context.Context, content Content) error {
	return s.MutateContent(ctx, func(list []Content) ([]Content, error) {
		return append([]Content{content}, list...), nil
	})
}

// DeleteContent remove o conteúdo; ErrNotFound quando ausente.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.MutateContent(ctx, func(list []Content) ([]Content, error) {
		out := list[:0]
		found := false
		for _, c := range list {
			if c.ID == id {
				found = true
				continue
			}
			out = append(out, c)
		}
		if !found {
			return nil, ErrNotFound
		}
		return out, nil
	})
}

func decodeCollection[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decodificar coleção: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func encodeCollection[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("codificar coleção: %w", err)
	}
	return raw, nil
}
