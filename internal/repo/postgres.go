package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sfdportal/portal/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS portal_records (
    chave         TEXT PRIMARY KEY,
    valor         JSONB NOT NULL DEFAULT '[]'::jsonb,
    versao        BIGINT NOT NULL DEFAULT 0,
    atualizado_em TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend guarda cada coleção em uma linha de portal_records.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend cria o backend e garante a tabela.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("criar portal_records: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT valor FROM portal_records WHERE chave = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// Mutate bloqueia a linha da coleção (SELECT ... FOR UPDATE) durante a alteração.
func (b *PostgresBackend) Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	return db.WithTx(ctx, b.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO portal_records (chave) VALUES ($1)
            ON CONFLICT (chave) DO NOTHING
        `, key); err != nil {
			return err
		}

		var current []byte
		if err := tx.QueryRow(ctx, `SELECT valor FROM portal_records WHERE chave = $1 FOR UPDATE`, key).Scan(&current); err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
            UPDATE portal_records
            SET valor = $2, versao = versao + 1, atualizado_em = now()
            WHERE chave = $1
        `, key, next)
		return err
	})
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}
