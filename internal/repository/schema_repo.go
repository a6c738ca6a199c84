package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequiredTables are the tables created by internal/migrations.
var RequiredTables = []string{
	"levels", "vip_plans", "settings", "users",
	"wallet_entries", "live_users", "live_streaming_history", "audit_logs",
}

type SchemaRepository struct {
	db *pgxpool.Pool
}

func NewSchemaRepository(db *pgxpool.Pool) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// MissingTables lists the required tables absent from the current search path.
func (r *SchemaRepository) MissingTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t FROM unnest($1::text[]) AS t
		WHERE to_regclass(t) IS NULL
		ORDER BY t
	`, RequiredTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	missing := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		missing = append(missing, name)
	}
	return missing, rows.Err()
}

// SettingsSeeded reports whether the singleton settings row exists.
func (r *SchemaRepository) SettingsSeeded(ctx context.Context) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM settings WHERE id = 1)`).Scan(&ok)
	return ok, err
}
