package repo

import (
	"context"

	dom "github.com/Codedeveloper-MT/Vigilent-login/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepo provides account persistence.
type AccountRepo interface {
	Create(ctx context.Context, a dom.Account) (dom.Account, error)
	GetByUsername(ctx context.Context, username string) (dom.Account, error)
	Update(ctx context.Context, username string, patch dom.Account) (dom.Account, error)
	Delete(ctx context.Context, username string) (bool, error)
}

// PGAccountRepo implements AccountRepo with Postgres.
type PGAccountRepo struct {
	db *pgxpool.Pool
}

// NewPGAccountRepo returns a new PGAccountRepo.
func NewPGAccountRepo(db *pgxpool.Pool) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

// Create inserts a new account and returns it. Uniqueness of username is
// settled by the accounts_username_key constraint, so two concurrent inserts
// of the same username cannot both succeed.
func (r *PGAccountRepo) Create(ctx context.Context, a dom.Account) (dom.Account, error) {
	query := `
		INSERT INTO accounts (username, country, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, country, phone, password_hash, created_at, updated_at`
	var out dom.Account
	err := r.db.QueryRow(ctx, query, a.Username, a.Country, a.Phone, a.PasswordHash).Scan(
		&out.ID, &out.Username, &out.Country, &out.Phone, &out.PasswordHash,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

// GetByUsername returns the account by username.
func (r *PGAccountRepo) GetByUsername(ctx context.Context, username string) (dom.Account, error) {
	query := `
		SELECT id, username, country, phone, password_hash, created_at, updated_at
		FROM accounts WHERE username = $1`
	var a dom.Account
	err := r.db.QueryRow(ctx, query, username).Scan(
		&a.ID, &a.Username, &a.Country, &a.Phone, &a.PasswordHash,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Update writes country, phone and password_hash from patch and returns the
// updated row. Callers build patch from the current row first.
func (r *PGAccountRepo) Update(ctx context.Context, username string, patch dom.Account) (dom.Account, error) {
	query := `
		UPDATE accounts SET country = $2, phone = $3, password_hash = $4, updated_at = NOW()
		WHERE username = $1
		RETURNING id, username, country, phone, password_hash, created_at, updated_at`
	var a dom.Account
	err := r.db.QueryRow(ctx, query, username, patch.Country, patch.Phone, patch.PasswordHash).Scan(
		&a.ID, &a.Username, &a.Country, &a.Phone, &a.PasswordHash,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Delete removes the account. Returns true if a row existed.
func (r *PGAccountRepo) Delete(ctx context.Context, username string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE username = $1`, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
