package migrations

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"
	"skin-assessment-service/internal/domain"
)

// The built-in bank is seeded once; edits made in the table afterwards are kept.
func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return SeedQuestionBank(ctx, db, domain.DefaultQuestionBank(), false)
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM question_banks WHERE id = ?`, domain.DefaultQuestionBankID)
			return err
		},
	)
}

// SeedQuestionBank stores bank, replacing an existing row only when overwrite is set.
func SeedQuestionBank(ctx context.Context, db bun.IDB, bank domain.QuestionBank, overwrite bool) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(bank)
	if err != nil {
		return err
	}
	query := `INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO NOTHING`
	if overwrite {
		query = `INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	}
	_, err = db.ExecContext(ctx, query, bank.ID, string(data))
	return err
}
