package mappers

import (
	"time"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/ledger"
)

type Validation struct {
	ValidRowCount int                     `json:"validRowCount"`
	Errors        []batch.ValidationIssue `json:"errors"`
	Warnings      []batch.ValidationIssue `json:"warnings"`
}

type AnalysisNotes struct {
	OverallNotes string   `json:"overallNotes"`
	RiskFlags    []string `json:"riskFlags"`
}

type AIAnalysis struct {
	QualityScore      int                      `json:"qualityScore"`
	AutoFixable       []batch.AutoFix          `json:"autoFixable"`
	DuplicateClusters []batch.DuplicateCluster `json:"duplicateClusters"`
	Analysis          AnalysisNotes            `json:"analysis"`
}

type AnalyzeResponse struct {
	UploadID   string                `json:"uploadId"`
	FileName   string                `json:"fileName"`
	TotalRows  int                   `json:"totalRows"`
	Rows       []batch.NormalizedRow `json:"rows"`
	Validation Validation            `json:"validation"`
	AIAnalysis AIAnalysis            `json:"aiAnalysis"`
}

func SessionToAnalyzeResponse(s session.UploadSession) AnalyzeResponse {
	errs := make([]batch.ValidationIssue, 0)
	warnings := make([]batch.ValidationIssue, 0)
	errorRows := map[int]bool{}
	for _, issue := range s.Issues() {
		if issue.Severity == batch.SeverityError {
			errs = append(errs, issue)
			errorRows[issue.Row] = true
		} else {
			warnings = append(warnings, issue)
		}
	}

	rows := s.Rows()
	if rows == nil {
		rows = []batch.NormalizedRow{}
	}
	fixes := s.AutoFixes()
	if fixes == nil {
		fixes = []batch.AutoFix{}
	}
	clusters := s.DuplicateClusters()
	if clusters == nil {
		clusters = []batch.DuplicateCluster{}
	}
	flags := s.RiskFlags()
	if flags == nil {
		flags = []string{}
	}

	return AnalyzeResponse{
		UploadID:  s.ID().String(),
		FileName:  s.FileName(),
		TotalRows: s.TotalRows(),
		Rows:      rows,
		Validation: Validation{
			ValidRowCount: s.TotalRows() - len(errorRows),
			Errors:        errs,
			Warnings:      warnings,
		},
		AIAnalysis: AIAnalysis{
			QualityScore:      s.QualityScore(),
			AutoFixable:       fixes,
			DuplicateClusters: clusters,
			Analysis: AnalysisNotes{
				OverallNotes: s.OverallNotes(),
				RiskFlags:    flags,
			},
		},
	}
}

type ConfirmResponse struct {
	LedgerID     string           `json:"ledgerId"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Status       string           `json:"status"`
	Errors       []batch.RowError `json:"errors"`
}

func ConfirmResultToResponse(r session.ConfirmResult) ConfirmResponse {
	errs := r.Errors
	if errs == nil {
		errs = []batch.RowError{}
	}
	return ConfirmResponse{
		LedgerID:     r.LedgerID.String(),
		TotalRows:    r.TotalRows,
		SuccessCount: r.SuccessCount,
		ErrorCount:   r.ErrorCount,
		Status:       string(r.Status),
		Errors:       errs,
	}
}

type HistoryItem struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	FileName     string    `json:"fileName"`
	TotalRows    int       `json:"totalRows"`
	SuccessCount int       `json:"successCount"`
	ErrorCount   int       `json:"errorCount"`
	Status       string    `json:"status"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func RecordToHistoryItem(r ledger.ImportRecord) HistoryItem {
	return HistoryItem{
		ID:           r.ID().String(),
		SessionID:    r.SessionID().String(),
		FileName:     r.FileName(),
		TotalRows:    r.TotalRows(),
		SuccessCount: r.SuccessCount(),
		ErrorCount:   r.ErrorCount(),
		Status:       r.Status(),
		UploadedBy:   r.UploadedBy(),
		CreatedAt:    r.CreatedAt(),
	}
}
