package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportRecord is one append-only history entry; never updated after insert.
type ImportRecord struct {
	id           uuid.UUID
	sessionID    uuid.UUID
	fileName     string
	totalRows    int
	successCount int
	errorCount   int
	status       string
	uploadedBy   string
	createdAt    time.Time
}

func New(sessionID uuid.UUID, fileName string, totalRows, successCount, errorCount int, status, uploadedBy string) ImportRecord {
	return ImportRecord{
		id:           uuid.New(),
		sessionID:    sessionID,
		fileName:     fileName,
		totalRows:    totalRows,
		successCount: successCount,
		errorCount:   errorCount,
		status:       status,
		uploadedBy:   uploadedBy,
		createdAt:    time.Now(),
	}
}

func Hydrate(
	id uuid.UUID,
	sessionID uuid.UUID,
	fileName string,
	totalRows int,
	successCount int,
	errorCount int,
	status string,
	uploadedBy string,
	createdAt time.Time,
) ImportRecord {
	return ImportRecord{
		id:           id,
		sessionID:    sessionID,
		fileName:     fileName,
		totalRows:    totalRows,
		successCount: successCount,
		errorCount:   errorCount,
		status:       status,
		uploadedBy:   uploadedBy,
		createdAt:    createdAt,
	}
}

func (r ImportRecord) ID() uuid.UUID        { return r.id }
func (r ImportRecord) SessionID() uuid.UUID { return r.sessionID }
func (r ImportRecord) FileName() string     { return r.fileName }
func (r ImportRecord) TotalRows() int       { return r.totalRows }
func (r ImportRecord) SuccessCount() int    { return r.successCount }
func (r ImportRecord) ErrorCount() int      { return r.errorCount }
func (r ImportRecord) Status() string       { return r.status }
func (r ImportRecord) UploadedBy() string   { return r.uploadedBy }
func (r ImportRecord) CreatedAt() time.Time { return r.createdAt }

type Repository interface {
	Append(ctx context.Context, record ImportRecord) error
	List(ctx context.Context, limit, offset int) ([]ImportRecord, error)
}
