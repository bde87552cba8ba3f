package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core/user"
)

const pqUniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO users (
			email, name, preferred_name, pronouns, grad_year, prefect, birthday,
			position, email_verified, referred_by, sgo_sticker, event_alerts,
			created_at, last_updated
		) VALUES (
			:email, :name, :preferred_name, :pronouns, :grad_year, :prefect, :birthday,
			:position, :email_verified, :referred_by, :sgo_sticker, :event_alerts,
			:created_at, :last_updated
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, usr); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		UPDATE users SET
			name = :name, preferred_name = :preferred_name, pronouns = :pronouns,
			grad_year = :grad_year, prefect = :prefect, birthday = :birthday,
			referred_by = :referred_by, sgo_sticker = :sgo_sticker,
			event_alerts = :event_alerts, last_updated = :last_updated
		WHERE email = :email`
	res, err := repo.db.NamedExecContext(ctx, query, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) QueryReferrals(ctx context.Context, email string) ([]string, error) {
	var refs []string
	query := `SELECT email FROM users WHERE referred_by = $1 ORDER BY email`
	if err := repo.db.SelectContext(ctx, &refs, query, email); err != nil {
		return nil, errors.Wrap(err, "querying referrals")
	}
	return refs, nil
}

func (repo userRepository) SetEmailVerified(ctx context.Context, email string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET email_verified = true WHERE email = $1`, email)
	if err != nil {
		return errors.Wrap(err, "setting email verified")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) SetPosition(ctx context.Context, email string, pos user.Position) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET position = $1 WHERE email = $2`, pos, email)
	if err != nil {
		return errors.Wrap(err, "setting position")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}
