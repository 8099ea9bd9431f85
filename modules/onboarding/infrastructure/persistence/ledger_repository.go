package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/ledger"
	"github.com/peopleforge/peopleforge/pkg/composables"
)

type PgLedgerRepository struct{}

func NewLedgerRepository() ledger.Repository {
	return &PgLedgerRepository{}
}

func (r *PgLedgerRepository) Append(ctx context.Context, record ledger.ImportRecord) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO import_records (id, session_id, file_name, total_rows, success_count, error_count, status, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID(), record.SessionID(), record.FileName(), record.TotalRows(),
		record.SuccessCount(), record.ErrorCount(), record.Status(), record.UploadedBy(), record.CreatedAt(),
	)
	return err
}

func (r *PgLedgerRepository) List(ctx context.Context, limit, offset int) ([]ledger.ImportRecord, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, session_id, file_name, total_rows, success_count, error_count, status, uploaded_by, created_at
		FROM import_records ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.ImportRecord
	for rows.Next() {
		var (
			id           uuid.UUID
			sessionID    uuid.UUID
			fileName     string
			totalRows    int
			successCount int
			errorCount   int
			status       string
			uploadedBy   string
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &sessionID, &fileName, &totalRows, &successCount, &errorCount, &status, &uploadedBy, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, ledger.Hydrate(id, sessionID, fileName, totalRows, successCount, errorCount, status, uploadedBy, createdAt))
	}
	return out, rows.Err()
}
