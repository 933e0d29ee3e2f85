package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/pillrx/internal/database/repository"
)

type seedDrug struct {
	name, imprint, color, shape string
}

var defaultDrugs = []seedDrug{
	{"Benadryl", "BENADRYL 25", "pink", "capsule"},
	{"Advil", "ADVIL", "brown", "round"},
	{"Tylenol", "TYLENOL 500", "white", "oblong"},
	{"Aleve", "ALEVE", "blue", "oblong"},
	{"Motrin", "MOTRIN IB", "orange", "round"},
	{"Claritin", "CLARITIN 10", "white", "oval"},
	{"Zyrtec", "ZYRTEC 10", "white", "rectangle"},
	{"Xanax", "XANAX 0.5", "peach", "oval"},
	{"Bayer Aspirin", "BAYER", "white", "round"},
	{"Sudafed", "SU 30", "red", "round"},
	{"Excedrin", "EXCEDRIN", "green", "oblong"},
	{"Paracetamol", "P 500", "white", "round"},
}

// SeedDefaults ensures the baseline drug catalog exists.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewDrugRepo(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count drugs: %w", err)
	}
	if n > 0 {
		return nil
	}
	for idx, d := range defaultDrugs {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("drug:"+d.name)).String()
		drug := repository.Drug{ID: id, Name: d.name, Imprint: d.imprint, Color: d.color, Shape: d.shape, SortOrder: idx}
		if err := repo.Upsert(ctx, drug); err != nil {
			return err
		}
	}
	return nil
}
