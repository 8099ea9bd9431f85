package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
)

var testRef = ReferenceData{
	Departments:    []string{"Engineering", "Design", "Sales"},
	JobTitles:      []string{"Software Engineer", "Product Designer"},
	ExistingEmails: map[string]bool{"taken@example.com": true},
}

func validRow(n int, email string) batch.NormalizedRow {
	return batch.NormalizedRow{
		Row:        n,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      email,
		Department: "Engineering",
	}
}

func issuesFor(report Report, row int, field string) []batch.ValidationIssue {
	var out []batch.ValidationIssue
	for _, issue := range report.Issues {
		if issue.Row == row && issue.Field == field {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidate_RequiredFields(t *testing.T) {
	v := NewValidator(30)
	report := v.Validate([]batch.NormalizedRow{{Row: 1}}, testRef)

	require.Equal(t, 0, report.ValidRowCount)
	require.Len(t, issuesFor(report, 1, batch.FieldFirstName), 1)
	require.Len(t, issuesFor(report, 1, batch.FieldLastName), 1)
	require.Len(t, issuesFor(report, 1, batch.FieldEmail), 1)
	require.Len(t, issuesFor(report, 1, batch.FieldDepartment), 1)
}

// The 3-row scenario: row 2 has a malformed email, row 3 duplicates row 1.
func TestValidate_ThreeRowScenario(t *testing.T) {
	v := NewValidator(30)
	rows := []batch.NormalizedRow{
		validRow(1, "ada@example.com"),
		validRow(2, "not-an-email"),
		validRow(3, "ada@example.com"),
	}

	report := v.Validate(rows, testRef)

	badFormat := issuesFor(report, 2, batch.FieldEmail)
	require.Len(t, badFormat, 1)
	require.Equal(t, batch.SeverityError, badFormat[0].Severity)

	dup := issuesFor(report, 3, batch.FieldEmail)
	require.Len(t, dup, 1)
	require.Equal(t, batch.SeverityError, dup[0].Severity)
	require.Contains(t, dup[0].Message, "row 1")

	require.Equal(t, 1, report.ValidRowCount)

	clusters := duplicateClusters(rows, testRef)
	require.NotEmpty(t, clusters)
	require.Equal(t, []int{1, 3}, clusters[0].RowNumbers)
}

func TestValidate_ExistingAccountEmail(t *testing.T) {
	v := NewValidator(30)
	report := v.Validate([]batch.NormalizedRow{validRow(1, "taken@example.com")}, testRef)

	issues := issuesFor(report, 1, batch.FieldEmail)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "active account")
	require.Equal(t, 0, report.ValidRowCount)
}

func TestValidate_Department(t *testing.T) {
	v := NewValidator(30)

	row := validRow(1, "ada@example.com")
	row.Department = "engineering" // case-insensitive match passes
	report := v.Validate([]batch.NormalizedRow{row}, testRef)
	require.Empty(t, issuesFor(report, 1, batch.FieldDepartment))

	row.Department = "Enginering"
	report = v.Validate([]batch.NormalizedRow{row}, testRef)
	issues := issuesFor(report, 1, batch.FieldDepartment)
	require.Len(t, issues, 1)
	require.Equal(t, batch.SeverityError, issues[0].Severity)
}

func TestValidate_JobTitleIsAdvisory(t *testing.T) {
	v := NewValidator(30)
	row := validRow(1, "ada@example.com")
	row.JobTitle = "Chief Vibes Officer"

	report := v.Validate([]batch.NormalizedRow{row}, testRef)
	issues := issuesFor(report, 1, batch.FieldJobTitle)
	require.Len(t, issues, 1)
	require.Equal(t, batch.SeverityWarning, issues[0].Severity)
	require.Equal(t, 1, report.ValidRowCount, "warnings never block")
}

func TestValidate_Level(t *testing.T) {
	v := NewValidator(30)
	for _, tc := range []struct {
		level   string
		wantErr bool
	}{
		{"", false},
		{"1", false},
		{"10", false},
		{"0", true},
		{"11", true},
		{"senior", true},
	} {
		row := validRow(1, "ada@example.com")
		row.Level = tc.level
		report := v.Validate([]batch.NormalizedRow{row}, testRef)
		if tc.wantErr {
			require.NotEmpty(t, issuesFor(report, 1, batch.FieldLevel), "level %q", tc.level)
		} else {
			require.Empty(t, issuesFor(report, 1, batch.FieldLevel), "level %q", tc.level)
		}
	}
}

func TestValidate_StartDate(t *testing.T) {
	v := NewValidator(30)
	now := time.Now()

	row := validRow(1, "ada@example.com")
	row.StartDate = "soon"
	report := v.Validate([]batch.NormalizedRow{row}, testRef)
	issues := issuesFor(report, 1, batch.FieldStartDate)
	require.Len(t, issues, 1)
	require.Equal(t, batch.SeverityError, issues[0].Severity)

	row.StartDate = now.AddDate(0, 0, -60).Format("2006-01-02")
	report = v.Validate([]batch.NormalizedRow{row}, testRef)
	issues = issuesFor(report, 1, batch.FieldStartDate)
	require.Len(t, issues, 1)
	require.Equal(t, batch.SeverityWarning, issues[0].Severity)

	row.StartDate = now.AddDate(3, 0, 0).Format("2006-01-02")
	report = v.Validate([]batch.NormalizedRow{row}, testRef)
	issues = issuesFor(report, 1, batch.FieldStartDate)
	require.Len(t, issues, 1)
	require.Equal(t, batch.SeverityWarning, issues[0].Severity)

	row.StartDate = now.AddDate(0, 1, 0).Format("02 Jan 2006")
	report = v.Validate([]batch.NormalizedRow{row}, testRef)
	require.Empty(t, issuesFor(report, 1, batch.FieldStartDate))
}

func TestValidate_NameCasing(t *testing.T) {
	v := NewValidator(30)

	row := validRow(1, "ada@example.com")
	row.FirstName = "ada"
	row.LastName = "LOVELACE"
	report := v.Validate([]batch.NormalizedRow{row}, testRef)
	require.Len(t, issuesFor(report, 1, batch.FieldFirstName), 1)
	require.Len(t, issuesFor(report, 1, batch.FieldLastName), 1)
	require.Equal(t, 1, report.ValidRowCount)

	// mixed-case spellings are left alone
	row.FirstName = "Ada"
	row.LastName = "McDonald"
	report = v.Validate([]batch.NormalizedRow{row}, testRef)
	require.Empty(t, issuesFor(report, 1, batch.FieldLastName))
}

func TestParseStartDate_ExcelSerial(t *testing.T) {
	parsed, ok := ParseStartDate("45292") // 2024-01-01
	require.True(t, ok)
	require.Equal(t, 2024, parsed.Year())

	_, ok = ParseStartDate("7") // plain numbers are not serials
	require.False(t, ok)
}
