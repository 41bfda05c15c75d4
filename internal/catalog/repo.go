package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rootzsu/orderbot/internal/domain"
)

// Repository is the persistence contract for the service catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, s *domain.Service) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	db *sqlx.DB
}

// NewRepository builds a Postgres-backed catalog repository.
func NewRepository(db *sqlx.DB) Repository {
	return &pgRepository{db: db}
}

const serviceColumns = `service_id, name, description, price_usd, price_btc, price_stars, price_eur, price_uah, is_active`

func (r *pgRepository) ListActive(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+serviceColumns+` FROM services WHERE is_active ORDER BY service_id`)
	return out, err
}

func (r *pgRepository) List(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+serviceColumns+` FROM services ORDER BY service_id`)
	return out, err
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	err := r.db.GetContext(ctx, &s,
		`SELECT `+serviceColumns+` FROM services WHERE service_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgRepository) Create(ctx context.Context, s *domain.Service) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO services (name, description, price_usd, price_btc, price_stars, price_eur, price_uah, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING service_id`,
		s.Name, s.Description, s.PriceUSD, s.PriceBTC, s.PriceStars, s.PriceEUR, s.PriceUAH, s.Active,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

func (r *pgRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET is_active = $2 WHERE service_id = $1`, id, active)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM services WHERE service_id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrServiceNotFound
	}
	return nil
}
