package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
)

type Status string

const (
	StatusPreview    Status = "PREVIEW"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusPartial    Status = "PARTIAL"
	StatusFailed     Status = "FAILED"
)

// QualityScoreUnknown marks a session whose score was never computed
// (empty batch).
const QualityScoreUnknown = -1

// ConfirmResult is written once at the end of the commit phase and never
// mutated afterwards.
type ConfirmResult struct {
	LedgerID     uuid.UUID        `json:"ledgerId"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Status       Status           `json:"status"`
	Errors       []batch.RowError `json:"errors"`
}

// UploadSession is the durable record of one analyze-to-confirm lifecycle.
// Confirm is its only mutator.
type UploadSession struct {
	id                uuid.UUID
	status            Status
	fileName          string
	totalRows         int
	uploadedBy        string
	rows              []batch.NormalizedRow
	issues            []batch.ValidationIssue
	autoFixes         []batch.AutoFix
	duplicateClusters []batch.DuplicateCluster
	qualityScore      int
	overallNotes      string
	riskFlags         []string
	result            *ConfirmResult
	createdAt         time.Time
	expiresAt         time.Time
}

func New(
	fileName string,
	uploadedBy string,
	rows []batch.NormalizedRow,
	issues []batch.ValidationIssue,
	autoFixes []batch.AutoFix,
	duplicateClusters []batch.DuplicateCluster,
	qualityScore int,
	overallNotes string,
	riskFlags []string,
	ttl time.Duration,
) UploadSession {
	now := time.Now()
	return UploadSession{
		id:                uuid.New(),
		status:            StatusPreview,
		fileName:          fileName,
		totalRows:         len(rows),
		uploadedBy:        uploadedBy,
		rows:              rows,
		issues:            issues,
		autoFixes:         autoFixes,
		duplicateClusters: duplicateClusters,
		qualityScore:      qualityScore,
		overallNotes:      overallNotes,
		riskFlags:         riskFlags,
		createdAt:         now,
		expiresAt:         now.Add(ttl),
	}
}

func Hydrate(
	id uuid.UUID,
	status Status,
	fileName string,
	totalRows int,
	uploadedBy string,
	rows []batch.NormalizedRow,
	issues []batch.ValidationIssue,
	autoFixes []batch.AutoFix,
	duplicateClusters []batch.DuplicateCluster,
	qualityScore int,
	overallNotes string,
	riskFlags []string,
	result *ConfirmResult,
	createdAt time.Time,
	expiresAt time.Time,
) UploadSession {
	return UploadSession{
		id:                id,
		status:            status,
		fileName:          fileName,
		totalRows:         totalRows,
		uploadedBy:        uploadedBy,
		rows:              rows,
		issues:            issues,
		autoFixes:         autoFixes,
		duplicateClusters: duplicateClusters,
		qualityScore:      qualityScore,
		overallNotes:      overallNotes,
		riskFlags:         riskFlags,
		result:            result,
		createdAt:         createdAt,
		expiresAt:         expiresAt,
	}
}

func (s UploadSession) ID() uuid.UUID                               { return s.id }
func (s UploadSession) Status() Status                              { return s.status }
func (s UploadSession) FileName() string                            { return s.fileName }
func (s UploadSession) TotalRows() int                              { return s.totalRows }
func (s UploadSession) UploadedBy() string                          { return s.uploadedBy }
func (s UploadSession) Rows() []batch.NormalizedRow                 { return s.rows }
func (s UploadSession) Issues() []batch.ValidationIssue             { return s.issues }
func (s UploadSession) AutoFixes() []batch.AutoFix                  { return s.autoFixes }
func (s UploadSession) DuplicateClusters() []batch.DuplicateCluster { return s.duplicateClusters }
func (s UploadSession) QualityScore() int                           { return s.qualityScore }
func (s UploadSession) OverallNotes() string                        { return s.overallNotes }
func (s UploadSession) RiskFlags() []string                         { return s.riskFlags }
func (s UploadSession) Result() *ConfirmResult                      { return s.result }
func (s UploadSession) CreatedAt() time.Time                        { return s.createdAt }
func (s UploadSession) ExpiresAt() time.Time                        { return s.expiresAt }

func (s UploadSession) Expired(now time.Time) bool {
	return now.After(s.expiresAt)
}

func (s UploadSession) IsTerminal() bool {
	switch s.status {
	case StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// FindFix returns the auto-fix with the given id, if the session recorded one.
func (s UploadSession) FindFix(id string) (batch.AutoFix, bool) {
	for _, f := range s.autoFixes {
		if f.ID == id {
			return f, true
		}
	}
	return batch.AutoFix{}, false
}

// WorkingRows returns a deep copy of the rows for confirm-time fix
// application; the stored rows stay exactly as analyzed.
func (s UploadSession) WorkingRows() []batch.NormalizedRow {
	out := make([]batch.NormalizedRow, len(s.rows))
	copy(out, s.rows)
	for i := range out {
		out[i].Raw = copyMap(s.rows[i].Raw)
		out[i].Extra = copyMap(s.rows[i].Extra)
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
