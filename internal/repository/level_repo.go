package repository

import (
	"context"

	"streamhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LevelRepository struct {
	db *pgxpool.Pool
}

func NewLevelRepository(db *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{db: db}
}

// List returns every level ordered by threshold.
func (r *LevelRepository) List(ctx context.Context) ([]domain.Level, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT id, name, coin, image, created_at FROM levels ORDER BY coin ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []domain.Level{}
	for rows.Next() {
		var l domain.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.Coin, &l.Image, &l.CreatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (r *LevelRepository) Create(ctx context.Context, l *domain.Level) error {
	err := conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO levels (name, coin, image) VALUES ($1, $2, $3) RETURNING id, created_at`,
		l.Name, l.Coin, l.Image,
	).Scan(&l.ID, &l.CreatedAt)
	return translate(err)
}
