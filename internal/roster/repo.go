package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/rootzsu/orderbot/internal/domain"
)

// Repository is the persistence contract for users and the operator roster.
type Repository interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int64, error)

	IsOperator(ctx context.Context, id int64) (bool, error)
	AddOperator(ctx context.Context, id int64) (bool, error)
	RemoveOperator(ctx context.Context, id int64) (bool, error)
	ListOperators(ctx context.Context) ([]int64, error)
}

type pgRepository struct {
	db *sqlx.DB
}

// NewRepository builds a Postgres-backed roster repository.
func NewRepository(db *sqlx.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) UpsertUser(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, first_name, last_name, join_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name`,
		u.ID, u.Username, u.FirstName, u.LastName, u.JoinedAt, u.Status)
	return err
}

func (r *pgRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT user_id, username, first_name, last_name, join_date, status
		 FROM users WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *pgRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.db.SelectContext(ctx, &out,
		`SELECT user_id, username, first_name, last_name, join_date, status
		 FROM users ORDER BY join_date`)
	return out, err
}

func (r *pgRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	var out []int64
	err := r.db.SelectContext(ctx, &out,
		`SELECT user_id FROM users WHERE status = $1 ORDER BY user_id`, domain.UserActive)
	return out, err
}

func (r *pgRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (r *pgRepository) IsOperator(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM operators WHERE user_id = $1)`, id)
	return exists, err
}

func (r *pgRepository) AddOperator(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO operators (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *pgRepository) RemoveOperator(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM operators WHERE user_id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *pgRepository) ListOperators(ctx context.Context) ([]int64, error) {
	var out []int64
	err := r.db.SelectContext(ctx, &out,
		`SELECT user_id FROM operators ORDER BY user_id`)
	return out, err
}
