package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"project_asesoria/internal/entities"
)

// ScheduleRepository reads the weekly class schedule the schedule replies
// are rendered from. Rows are kept in position order within each group.
type ScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Slots(ctx context.Context) ([]entities.ClassSlot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT group_name, day_key, slot, subject, position
		 FROM class_schedule ORDER BY group_name, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ClassSlot
	for rows.Next() {
		var s entities.ClassSlot
		if err := rows.Scan(&s.Group, &s.DayKey, &s.Slot, &s.Subject, &s.Position); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Replace swaps the schedule of one group, used by the ops upload.
func (r *ScheduleRepository) Replace(ctx context.Context, group string, slots []entities.ClassSlot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM class_schedule WHERE group_name = $1`, group); err != nil {
		return err
	}
	for i, s := range slots {
		if _, err := tx.Exec(ctx,
			`INSERT INTO class_schedule (group_name, day_key, slot, subject, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			group, s.DayKey, s.Slot, s.Subject, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
