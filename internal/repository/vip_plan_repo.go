package repository

import (
	"context"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VIPPlanRepository struct {
	db *pgxpool.Pool
}

func NewVIPPlanRepository(db *pgxpool.Pool) *VIPPlanRepository {
	return &VIPPlanRepository{db: db}
}

const planColumns = `id, name, validity, validity_type, price_coin, created_at`

func scanPlan(row scanner) (*domain.VIPPlan, error) {
	var p domain.VIPPlan
	if err := row.Scan(&p.ID, &p.Name, &p.Validity, &p.ValidityType, &p.PriceCoin, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *VIPPlanRepository) GetByID(ctx context.Context, id int64) (*domain.VIPPlan, error) {
	return scanPlan(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+planColumns+` FROM vip_plans WHERE id = $1`, id))
}

func (r *VIPPlanRepository) List(ctx context.Context) ([]domain.VIPPlan, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+planColumns+` FROM vip_plans ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []domain.VIPPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *VIPPlanRepository) Create(ctx context.Context, p *domain.VIPPlan) error {
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO vip_plans (name, validity, validity_type, price_coin) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Name, p.Validity, p.ValidityType, p.PriceCoin,
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err)
}
