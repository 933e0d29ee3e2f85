package repository

import (
	"context"
	"database/sql"
)

// DrugRepo handles the drug catalog.
type DrugRepo struct {
	db *sql.DB
}

func NewDrugRepo(db *sql.DB) *DrugRepo {
	return &DrugRepo{db: db}
}

func (r *DrugRepo) Upsert(ctx context.Context, d Drug) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO drugs(id, name, imprint, color, shape, sort_order)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 imprint=excluded.imprint,
	 color=excluded.color,
	 shape=excluded.shape,
	 sort_order=excluded.sort_order;
	`, d.ID, d.Name, d.Imprint, d.Color, d.Shape, d.SortOrder)
	return err
}

func (r *DrugRepo) List(ctx context.Context) ([]Drug, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, imprint, color, shape, sort_order FROM drugs ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Drug
	for rows.Next() {
		var d Drug
		if err := rows.Scan(&d.ID, &d.Name, &d.Imprint, &d.Color, &d.Shape, &d.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DrugRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drugs`).Scan(&n)
	return n, err
}
