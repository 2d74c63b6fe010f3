package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"project_asesoria/internal/entities"
)

// OutageRepository holds the per-service operational flags the admin
// commands toggle.
type OutageRepository struct {
	db *pgxpool.Pool
}

func NewOutageRepository(db *pgxpool.Pool) *OutageRepository {
	return &OutageRepository{db: db}
}

func (r *OutageRepository) ServiceStatuses(ctx context.Context) ([]entities.ServiceStatus, error) {
	rows, err := r.db.Query(ctx,
		`SELECT service, operational, note, updated_at FROM service_status ORDER BY service`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ServiceStatus
	for rows.Next() {
		var s entities.ServiceStatus
		if err := rows.Scan(&s.Service, &s.Operational, &s.Note, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *OutageRepository) SetServiceStatus(ctx context.Context, service string, operational bool, note string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_status (service, operational, note, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (service) DO UPDATE SET operational = EXCLUDED.operational,
		                                    note = EXCLUDED.note,
		                                    updated_at = NOW()`,
		service, operational, note)
	return err
}
