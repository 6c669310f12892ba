package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"skin-assessment-service/internal/domain"
)

// QuestionBankLoader loads question bank JSONB from Postgres.
type QuestionBankLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionBankLoader(pool *pgxpool.Pool) *QuestionBankLoader {
	return &QuestionBankLoader{pool: pool}
}

func (l *QuestionBankLoader) LoadQuestionBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, fmt.Errorf("load bank %q: %w", bankID, domain.ErrQuestionBankNotFound)
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load bank: %w", err)
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	if bank.ID == "" {
		bank.ID = bankID
	}
	return bank, nil
}
