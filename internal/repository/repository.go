package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/model"
)

// Repository is the PostgreSQL-backed ledger.Store plus the admin-facing
// queries around it. All engine mutations run inside Atomically; everything
// else is plain reads or single-statement admin writes.
type Repository struct {
	db *sqlx.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ ledger.Store = (*Repository)(nil)

func (r *Repository) EnsureUser(ctx context.Context, userID int64, referredBy *int64) (*model.User, error) {
	// referred_by arrives via a forgeable start payload; the subselect turns
	// an id that was never registered into NULL so the FK holds.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, referred_by)
		VALUES ($1, (SELECT id FROM users WHERE id = $2))
		ON CONFLICT (id) DO NOTHING`, userID, referredBy)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Atomically runs fn inside one database transaction. The guards the engine
// relies on (row locks, conditional updates, unique pairs) live in the Tx
// statement implementations.
func (r *Repository) Atomically(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
