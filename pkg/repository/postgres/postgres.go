package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/utils/safe"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = interfaces.ErrNotFound

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate
func Schema() string {
	return schemaSQL
}

type Postgres struct {
	pool      *pgxpool.Pool
	tool      *toolRepository
	savedTool *savedToolRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to dsn. The schema must already exist (see Migrate) because
// the vector type is registered on every new connection.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse postgres dsn")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	toolRepo := &toolRepository{pool: pool}
	return &Postgres{
		pool:      pool,
		tool:      toolRepo,
		savedTool: &savedToolRepository{pool: pool},
	}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func Migrate(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return goerr.Wrap(err, "failed to connect for migration")
	}
	defer safe.CloseFunc(ctx, "postgres migration connection", func() error { return conn.Close(ctx) })

	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return goerr.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (p *Postgres) Tool() interfaces.ToolRepository {
	return p.tool
}

func (p *Postgres) SavedTool() interfaces.SavedToolRepository {
	return p.savedTool
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// transact runs fn in a transaction and rolls back when fn fails
func transact[T any](ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return zero, goerr.Wrap(err, "failed to begin transaction")
	}

	result, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return zero, goerr.Wrap(err, "transaction rollback failed", goerr.V("rollback_error", rbErr.Error()))
		}
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, goerr.Wrap(err, "failed to commit transaction")
	}
	return result, nil
}
