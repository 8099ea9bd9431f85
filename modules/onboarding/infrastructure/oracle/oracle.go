package oracle

import (
	"context"
	"errors"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
)

// ErrUnavailable is internal to the analyze pipeline: the suggestion engine
// degrades to heuristics-only output and the caller never sees it.
var ErrUnavailable = errors.New("suggestion oracle unavailable")

type Request struct {
	Rows        []batch.NormalizedRow   `json:"rows"`
	Issues      []batch.ValidationIssue `json:"issues"`
	Departments []string                `json:"departments"`
	JobTitles   []string                `json:"jobTitles"`
}

// FixCandidate is an oracle-proposed fix before the engine assigns ids and
// deduplicates per (row, field).
type FixCandidate struct {
	Row            int     `json:"row"`
	Field          string  `json:"field"`
	SuggestedValue string  `json:"suggestedValue"`
	Confidence     float64 `json:"confidence"`
	Category       string  `json:"category"`
	Issue          string  `json:"issue"`
}

// Analysis is the oracle's reply. QualityScore is a pointer so a reply that
// omits the field is distinguishable from an explicit 0.
type Analysis struct {
	AutoFixes         []FixCandidate           `json:"autoFixes"`
	DuplicateClusters []batch.DuplicateCluster `json:"duplicateClusters"`
	QualityScore      *int                     `json:"qualityScore"`
	Notes             string                   `json:"notes"`
	RiskFlags         []string                 `json:"riskFlags"`
}

type Oracle interface {
	Analyze(ctx context.Context, req Request) (Analysis, error)
}

// Disabled is the fallback oracle when no API key is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, Request) (Analysis, error) {
	return Analysis{}, ErrUnavailable
}
