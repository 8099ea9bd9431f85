package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/pkg/composables"
)

// sessionPayload is the JSONB body of a session row: everything the confirm
// phase needs to replay exactly what the user reviewed.
type sessionPayload struct {
	Rows              []batch.NormalizedRow    `json:"rows"`
	Issues            []batch.ValidationIssue  `json:"issues"`
	AutoFixes         []batch.AutoFix          `json:"autoFixes"`
	DuplicateClusters []batch.DuplicateCluster `json:"duplicateClusters"`
	QualityScore      int                      `json:"qualityScore"`
	OverallNotes      string                   `json:"overallNotes"`
	RiskFlags         []string                 `json:"riskFlags"`
	Result            *session.ConfirmResult   `json:"result,omitempty"`
}

type PgSessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &PgSessionRepository{}
}

func (r *PgSessionRepository) Create(ctx context.Context, s session.UploadSession) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sessionPayload{
		Rows:              s.Rows(),
		Issues:            s.Issues(),
		AutoFixes:         s.AutoFixes(),
		DuplicateClusters: s.DuplicateClusters(),
		QualityScore:      s.QualityScore(),
		OverallNotes:      s.OverallNotes(),
		RiskFlags:         s.RiskFlags(),
	})
	if err != nil {
		return gerrors.Wrap(err, "marshal session payload")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO upload_sessions (id, status, file_name, total_rows, uploaded_by, payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID(), string(s.Status()), s.FileName(), s.TotalRows(), s.UploadedBy(), payload, s.CreatedAt(), s.ExpiresAt(),
	)
	return err
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (session.UploadSession, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return session.UploadSession{}, err
	}

	var (
		status     string
		fileName   string
		totalRows  int
		uploadedBy string
		raw        []byte
		createdAt  time.Time
		expiresAt  time.Time
	)
	err = tx.QueryRow(ctx, `
		SELECT status, file_name, total_rows, uploaded_by, payload, created_at, expires_at
		FROM upload_sessions WHERE id = $1`, id,
	).Scan(&status, &fileName, &totalRows, &uploadedBy, &raw, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.UploadSession{}, session.ErrNotFound
		}
		return session.UploadSession{}, err
	}

	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return session.UploadSession{}, gerrors.Wrap(err, "unmarshal session payload")
	}

	return session.Hydrate(
		id, session.Status(status), fileName, totalRows, uploadedBy,
		payload.Rows, payload.Issues, payload.AutoFixes, payload.DuplicateClusters,
		payload.QualityScore, payload.OverallNotes, payload.RiskFlags, payload.Result,
		createdAt, expiresAt,
	), nil
}

func (r *PgSessionRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE upload_sessions SET status = $1 WHERE id = $2 AND status = $3`,
		string(session.StatusProcessing), id, string(session.StatusPreview),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a race loser from a bogus id.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM upload_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return session.ErrNotFound
		}
		return session.ErrAlreadyConfirmed
	}
	return nil
}

func (r *PgSessionRepository) Finalize(ctx context.Context, id uuid.UUID, result session.ConfirmResult) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return gerrors.Wrap(err, "marshal confirm result")
	}

	tag, err := tx.Exec(ctx, `
		UPDATE upload_sessions
		SET status = $1, payload = jsonb_set(payload, '{result}', $2::jsonb)
		WHERE id = $3`,
		string(result.Status), encoded, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (r *PgSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM upload_sessions WHERE expires_at < $1 AND status = $2`,
		now, string(session.StatusPreview),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
