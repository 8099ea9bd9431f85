package services

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
)

// ReferenceData is the read-only org data the rules check against. The
// pipeline only consumes it, never mutates it.
type ReferenceData struct {
	Departments    []string
	JobTitles      []string
	ExistingEmails map[string]bool
}

type Report struct {
	Issues []batch.ValidationIssue
	// ValidRowCount counts rows with zero ERROR-severity issues.
	ValidRowCount int
}

// ErrorRows returns the set of row numbers carrying at least one blocking
// issue.
func (r Report) ErrorRows() map[int]bool {
	out := map[int]bool{}
	for _, issue := range r.Issues {
		if issue.Severity == batch.SeverityError {
			out[issue.Row] = true
		}
	}
	return out
}

func (r Report) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == batch.SeverityWarning {
			n++
		}
	}
	return n
}

// FirstBlocking returns the first ERROR issue for the row, in rule order.
func (r Report) FirstBlocking(row int) (batch.ValidationIssue, bool) {
	for _, issue := range r.Issues {
		if issue.Row == row && issue.Severity == batch.SeverityError {
			return issue, true
		}
	}
	return batch.ValidationIssue{}, false
}

type Validator struct {
	pastGraceDays int
	now           func() time.Time
}

func NewValidator(pastGraceDays int) *Validator {
	return &Validator{pastGraceDays: pastGraceDays, now: time.Now}
}

// Validate applies every rule to every row; violations accumulate, nothing
// short-circuits. The same call serves analyze and confirm-time
// re-validation.
func (v *Validator) Validate(rows []batch.NormalizedRow, ref ReferenceData) Report {
	departments := lowerSet(ref.Departments)
	titles := lowerSet(ref.JobTitles)

	firstSeen := map[string]int{} // email -> first row carrying it

	var issues []batch.ValidationIssue
	errorRows := map[int]bool{}
	add := func(row int, field string, severity batch.Severity, message string) {
		issues = append(issues, batch.ValidationIssue{Row: row, Field: field, Severity: severity, Message: message})
		if severity == batch.SeverityError {
			errorRows[row] = true
		}
	}

	for _, row := range rows {
		// rule 1: required fields
		for _, f := range []struct{ field, label string }{
			{batch.FieldFirstName, "first name"},
			{batch.FieldLastName, "last name"},
			{batch.FieldEmail, "email"},
			{batch.FieldDepartment, "department"},
		} {
			if row.Field(f.field) == "" {
				add(row.Row, f.field, batch.SeverityError, f.label+" is required")
			}
		}

		// rule 2: email syntax
		if row.Email != "" && !validEmail(row.Email) {
			add(row.Row, batch.FieldEmail, batch.SeverityError, "email address is malformed")
		}

		// rule 3: email uniqueness, within the batch then against existing
		// active accounts
		if row.Email != "" {
			if first, seen := firstSeen[row.Email]; seen {
				add(row.Row, batch.FieldEmail, batch.SeverityError,
					fmt.Sprintf("duplicate email, first used on row %d", first))
			} else {
				firstSeen[row.Email] = row.Row
			}
			if ref.ExistingEmails[row.Email] {
				add(row.Row, batch.FieldEmail, batch.SeverityError, "email already belongs to an active account")
			}
		}

		// rule 4: referential checks
		if row.Department != "" && !departments[strings.ToLower(row.Department)] {
			add(row.Row, batch.FieldDepartment, batch.SeverityError, "department does not exist")
		}
		if row.JobTitle != "" && !titles[strings.ToLower(row.JobTitle)] {
			add(row.Row, batch.FieldJobTitle, batch.SeverityWarning, "job title is not in the reference list")
		}

		// rule 5: level range
		if row.Level != "" {
			level, err := strconv.Atoi(row.Level)
			switch {
			case err != nil:
				add(row.Row, batch.FieldLevel, batch.SeverityError, "level must be a whole number")
			case level < 1 || level > 10:
				add(row.Row, batch.FieldLevel, batch.SeverityError, "level must be between 1 and 10")
			}
		}

		// rule 6: start date format and sanity window
		if row.StartDate != "" {
			start, ok := ParseStartDate(row.StartDate)
			if !ok {
				add(row.Row, batch.FieldStartDate, batch.SeverityError, "unrecognized start date format")
			} else {
				now := v.now()
				if start.Before(now.AddDate(0, 0, -v.pastGraceDays)) {
					add(row.Row, batch.FieldStartDate, batch.SeverityWarning,
						fmt.Sprintf("start date is more than %d days in the past", v.pastGraceDays))
				} else if start.After(now.AddDate(2, 0, 0)) {
					add(row.Row, batch.FieldStartDate, batch.SeverityWarning, "start date is more than two years away")
				}
			}
		}

		// rule 7: name casing
		for _, f := range []struct{ field, label string }{
			{batch.FieldFirstName, "first name"},
			{batch.FieldLastName, "last name"},
		} {
			if value := row.Field(f.field); brokenCasing(value) {
				add(row.Row, f.field, batch.SeverityWarning, f.label+" casing looks off")
			}
		}

		// rule 8: stray interior whitespace
		for _, field := range []string{batch.FieldFirstName, batch.FieldLastName, batch.FieldDepartment, batch.FieldJobTitle} {
			if value := row.Field(field); strings.Contains(value, "  ") {
				add(row.Row, field, batch.SeverityWarning, "contains repeated whitespace")
			}
		}
	}

	valid := 0
	for _, row := range rows {
		if !errorRows[row.Row] {
			valid++
		}
	}
	return Report{Issues: issues, ValidRowCount: valid}
}

func lowerSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = true
	}
	return out
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

// startDateFormats is the fixed accepted set; anything else is rejected as an
// error rather than guessed.
var startDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02 Jan 2006",
	time.RFC3339,
}

// ParseStartDate parses against the fixed format set, plus excel date
// serials (xlsx cells often arrive as serial numbers).
func ParseStartDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range startDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 20000 && serial <= 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var titleCaser = cases.Title(language.English)

// brokenCasing reports clearly wrong casing only: all-lower or all-upper
// values. Mixed-case spellings like McDonald are left alone.
func brokenCasing(value string) bool {
	if value == "" {
		return false
	}
	hasUpper, hasLower := false, false
	for _, r := range value {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return false
	}
	return CanonicalName(value) != value
}

// CanonicalName is the value a name_casing fix proposes.
func CanonicalName(value string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(value)))
}
