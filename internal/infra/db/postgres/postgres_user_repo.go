package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

const uniqueViolation = "23505"

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, email, username, password_hash, avatar_url, subject, subscription_plan, progress, created_at`

func (r *PostgresUserRepo) Create(ctx context.Context, qx repository.Tx, u *repository.UserRecord) error {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (` + userColumns + `, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9);`
	_, err = ex.Exec(ctx, q, u.ID, u.Email, u.Username, u.PasswordHash, u.AvatarURL,
		string(u.Subject), string(u.SubscriptionPlan), u.Progress, u.CreatedAt)
	return mapWriteErr("create user", err)
}

func (r *PostgresUserRepo) Update(ctx context.Context, qx repository.Tx, u *model.User) error {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
UPDATE users
   SET email=$2, username=$3, avatar_url=$4, subject=$5, subscription_plan=$6, progress=$7, updated_at=$8
 WHERE id=$1;`
	tag, err := ex.Exec(ctx, q, u.ID, u.Email, u.Username, u.AvatarURL,
		string(u.Subject), string(u.SubscriptionPlan), u.Progress, time.Now())
	if err != nil {
		return mapWriteErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*repository.UserRecord, error) {
	return r.findOne(ctx, qx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*repository.UserRecord, error) {
	return r.findOne(ctx, qx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=$1;`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, qx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) findOne(ctx context.Context, qx repository.Tx, q string, arg interface{}) (*repository.UserRecord, error) {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	var (
		u                repository.UserRecord
		subject, tierStr string
	)
	err = ex.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.AvatarURL,
		&subject, &tierStr, &u.Progress, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Subject = model.Subject(subject)
	u.SubscriptionPlan = model.PlanTier(tierStr)
	return &u, nil
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}
