package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/aggregates/session"
	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/oracle"
)

type oracleStub struct {
	analysis oracle.Analysis
	err      error
	calls    int
}

func (o *oracleStub) Analyze(ctx context.Context, req oracle.Request) (oracle.Analysis, error) {
	o.calls++
	return o.analysis, o.err
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newEngine(o oracle.Oracle) *SuggestionEngine {
	return NewSuggestionEngine(o, 0.9, quietLog())
}

func scoreOf(v int) *int {
	return &v
}

func TestComputeQualityScore(t *testing.T) {
	require.Equal(t, session.QualityScoreUnknown, ComputeQualityScore(0, 0, 0, 0))
	require.Equal(t, 100, ComputeQualityScore(10, 0, 0, 0))
	require.Equal(t, 0, ComputeQualityScore(10, 10, 20, 10))
}

func TestComputeQualityScore_MonotoneInErrors(t *testing.T) {
	prev := 101
	for errorRows := 0; errorRows <= 10; errorRows++ {
		score := ComputeQualityScore(10, errorRows, 3, 2)
		require.LessOrEqual(t, score, prev, "%d error rows", errorRows)
		prev = score
	}
}

func TestAnalyze_OracleDown_HeuristicsStand(t *testing.T) {
	engine := newEngine(oracle.Disabled{})
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	analysis := engine.Analyze(context.Background(), rows, report, testRef)

	require.GreaterOrEqual(t, analysis.QualityScore, 0, "oracle outage never fails analyze")
	require.NotEmpty(t, analysis.AutoFixes, "casing fix comes from heuristics")
	require.Equal(t, batch.FixNameCasing, analysis.AutoFixes[0].Category)
	require.Equal(t, "Ada", analysis.AutoFixes[0].SuggestedValue)
}

func TestAnalyze_AutoAcceptBoundary(t *testing.T) {
	stub := &oracleStub{analysis: oracle.Analysis{
		AutoFixes: []oracle.FixCandidate{
			{Row: 1, Field: batch.FieldJobTitle, SuggestedValue: "Software Engineer", Confidence: 0.90, Category: "title_match"},
			{Row: 2, Field: batch.FieldJobTitle, SuggestedValue: "Software Engineer", Confidence: 0.89999, Category: "title_match"},
		},
	}}
	engine := newEngine(stub)
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "a@example.com", Department: "Engineering", JobTitle: "Sofware Engineer"},
		{Row: 2, FirstName: "Grace", LastName: "Hopper", Email: "g@example.com", Department: "Engineering", JobTitle: "Sofware Engineer"},
	}

	analysis := engine.Analyze(context.Background(), rows, Report{}, ReferenceData{})

	require.Len(t, analysis.AutoFixes, 2)
	byRow := map[int]batch.AutoFix{}
	for _, f := range analysis.AutoFixes {
		byRow[f.Row] = f
	}
	require.True(t, byRow[1].AutoAcceptable, "confidence exactly 0.90 is auto-acceptable")
	require.False(t, byRow[2].AutoAcceptable, "0.89999 is not")
}

func TestAnalyze_DedupKeepsHighestConfidence(t *testing.T) {
	stub := &oracleStub{analysis: oracle.Analysis{
		AutoFixes: []oracle.FixCandidate{
			{Row: 1, Field: batch.FieldFirstName, SuggestedValue: "Ada May", Confidence: 0.99, Category: "cleanup"},
		},
	}}
	engine := newEngine(stub)
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	analysis := engine.Analyze(context.Background(), rows, report, testRef)

	var firstNameFixes []batch.AutoFix
	for _, f := range analysis.AutoFixes {
		if f.Row == 1 && f.Field == batch.FieldFirstName {
			firstNameFixes = append(firstNameFixes, f)
		}
	}
	require.Len(t, firstNameFixes, 1, "one fix max per (row, field)")
	require.Equal(t, "Ada May", firstNameFixes[0].SuggestedValue, "higher confidence wins")
}

func TestAnalyze_OracleWithoutScoreKeepsHeuristicScore(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	// A reply carrying only notes must not collapse a clean batch's score
	// to the zero value.
	stub := &oracleStub{analysis: oracle.Analysis{Notes: "looks fine"}}
	analysis := newEngine(stub).Analyze(context.Background(), rows, report, testRef)

	require.Equal(t, 100, analysis.QualityScore)
	require.Equal(t, "looks fine", analysis.OverallNotes)
}

func TestAnalyze_OracleLowersScore(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	stub := &oracleStub{analysis: oracle.Analysis{QualityScore: scoreOf(60)}}
	analysis := newEngine(stub).Analyze(context.Background(), rows, report, testRef)

	require.Equal(t, 60, analysis.QualityScore)
}

func TestAnalyze_OracleCannotRaiseScore(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "bad", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	optimist := &oracleStub{analysis: oracle.Analysis{QualityScore: scoreOf(100)}}
	withOracle := newEngine(optimist).Analyze(context.Background(), rows, report, testRef)
	without := newEngine(oracle.Disabled{}).Analyze(context.Background(), rows, report, testRef)

	require.Equal(t, without.QualityScore, withOracle.QualityScore, "oracle never raises the deterministic score")
}

func TestAnalyze_FixIDsAreStable(t *testing.T) {
	engine := newEngine(oracle.Disabled{})
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "ada", LastName: "lovelace", Email: "ada@example.com", Department: "Engineering"},
	}
	v := NewValidator(30)
	report := v.Validate(rows, testRef)

	analysis := engine.Analyze(context.Background(), rows, report, testRef)
	require.Len(t, analysis.AutoFixes, 2)
	require.Equal(t, "fix-1", analysis.AutoFixes[0].ID)
	require.Equal(t, batch.FieldFirstName, analysis.AutoFixes[0].Field)
	require.Equal(t, "fix-2", analysis.AutoFixes[1].ID)
	require.Equal(t, batch.FieldLastName, analysis.AutoFixes[1].Field)
}

func TestHeuristicFixes_EmailDomainTypo(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@gamil.com", Department: "Engineering"},
	}
	fixes := heuristicFixes(rows, Report{}, testRef)

	require.Len(t, fixes, 1)
	require.Equal(t, batch.FixEmailTypo, fixes[0].Category)
	require.Equal(t, "ada@gmail.com", fixes[0].SuggestedValue)
	require.Equal(t, 0.95, fixes[0].Confidence)
}

func TestHeuristicFixes_EmailCompletion(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, Email: "ada@corp.example.com"},
		{Row: 2, Email: "grace@corp.example.com"},
		{Row: 3, Email: "alan"},
	}
	report := Report{Issues: []batch.ValidationIssue{
		{Row: 3, Field: batch.FieldEmail, Severity: batch.SeverityError, Message: "email address is malformed"},
	}}

	fixes := heuristicFixes(rows, report, testRef)
	require.Len(t, fixes, 1)
	require.Equal(t, batch.FixEmailCompletion, fixes[0].Category)
	require.Equal(t, "alan@corp.example.com", fixes[0].SuggestedValue)
}

func TestHeuristicFixes_DepartmentMatch(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Enginering"},
	}
	report := Report{Issues: []batch.ValidationIssue{
		{Row: 1, Field: batch.FieldDepartment, Severity: batch.SeverityError, Message: "department does not exist"},
	}}

	fixes := heuristicFixes(rows, report, testRef)
	require.Len(t, fixes, 1)
	require.Equal(t, batch.FixDepartmentMatch, fixes[0].Category)
	require.Equal(t, "Engineering", fixes[0].SuggestedValue)
	require.Equal(t, 0.9, fixes[0].Confidence)
}

func TestHeuristicFixes_GappedRowNumbers(t *testing.T) {
	// A blank sheet row between data rows leaves a gap in the numbering;
	// fixes must still land on the right row.
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"},
		{Row: 3, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Department: "Enginering"},
	}
	report := Report{Issues: []batch.ValidationIssue{
		{Row: 3, Field: batch.FieldDepartment, Severity: batch.SeverityError, Message: "department does not exist"},
	}}

	fixes := heuristicFixes(rows, report, testRef)
	require.Len(t, fixes, 1)
	require.Equal(t, 3, fixes[0].Row)
	require.Equal(t, "Engineering", fixes[0].SuggestedValue)
}

func TestHeuristicFixes_DateRescue(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, StartDate: "2026/09/01"},
	}
	report := Report{Issues: []batch.ValidationIssue{
		{Row: 1, Field: batch.FieldStartDate, Severity: batch.SeverityError, Message: "unrecognized start date format"},
	}}

	fixes := heuristicFixes(rows, report, testRef)
	require.Len(t, fixes, 1)
	require.Equal(t, batch.FixDateFormat, fixes[0].Category)
	require.Equal(t, "2026-09-01", fixes[0].SuggestedValue)
}

// Round-trip: applying the suggested fix and re-validating removes the issue
// the fix was generated for.
func TestFixRoundTrip(t *testing.T) {
	engine := newEngine(oracle.Disabled{})
	v := NewValidator(30)

	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Enginering"},
	}
	report := v.Validate(rows, testRef)
	analysis := engine.Analyze(context.Background(), rows, report, testRef)

	for _, fix := range analysis.AutoFixes {
		rows[0].SetField(fix.Field, fix.SuggestedValue)
	}
	after := v.Validate(rows, testRef)

	require.Empty(t, issuesFor(after, 1, batch.FieldFirstName))
	require.Empty(t, issuesFor(after, 1, batch.FieldDepartment))
	require.Equal(t, 1, after.ValidRowCount)
}

func TestDuplicateClusters_FuzzyNames(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada1@example.com"},
		{Row: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		{Row: 3, FirstName: "Ada", LastName: "Lovelase", Email: "ada2@example.com"},
	}
	clusters := duplicateClusters(rows, ReferenceData{})

	require.Len(t, clusters, 1)
	require.Equal(t, []int{1, 3}, clusters[0].RowNumbers)
	require.Equal(t, 0.75, clusters[0].Confidence)
}

func TestDuplicateClusters_ExistingAccount(t *testing.T) {
	rows := []batch.NormalizedRow{
		{Row: 1, FirstName: "Taken", LastName: "Person", Email: "taken@example.com"},
	}
	clusters := duplicateClusters(rows, testRef)

	require.Len(t, clusters, 1)
	require.Equal(t, []int{1}, clusters[0].RowNumbers)
	require.Contains(t, clusters[0].Reason, "existing account")
}
