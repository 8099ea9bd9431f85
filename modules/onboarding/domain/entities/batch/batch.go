package batch

import "strings"

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

type FixCategory string

const (
	FixNameCasing      FixCategory = "name_casing"
	FixEmailTypo       FixCategory = "email_typo"
	FixEmailCompletion FixCategory = "email_completion"
	FixDepartmentMatch FixCategory = "department_match"
	FixTitleMatch      FixCategory = "title_match"
	FixLevelClamp      FixCategory = "level_clamp"
	FixDateFormat      FixCategory = "date_format"
	FixCleanup         FixCategory = "cleanup"
)

// Canonical field names. These double as the keys accepted by
// NormalizedRow.Field/SetField and the field names carried by issues and
// fixes.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldDepartment = "department"
	FieldJobTitle   = "jobTitle"
	FieldLevel      = "level"
	FieldStartDate  = "startDate"
)

// HeaderOffset maps a data row number to its spreadsheet row: data row 1
// lives on spreadsheet row 2 (one header row, 1-based numbering).
const HeaderOffset = 2

// NormalizedRow keeps every canonical field as the normalized string form so
// that re-validation after fix application re-derives coercion issues the
// same way the first pass did. Raw preserves the source cells for audit;
// Extra carries unrecognized columns untouched.
type NormalizedRow struct {
	Row        int               `json:"row"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Email      string            `json:"email"`
	Department string            `json:"department"`
	JobTitle   string            `json:"jobTitle"`
	Level      string            `json:"level"`
	StartDate  string            `json:"startDate"`
	Raw        map[string]string `json:"raw,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (r NormalizedRow) Field(name string) string {
	switch name {
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldEmail:
		return r.Email
	case FieldDepartment:
		return r.Department
	case FieldJobTitle:
		return r.JobTitle
	case FieldLevel:
		return r.Level
	case FieldStartDate:
		return r.StartDate
	}
	return ""
}

func (r *NormalizedRow) SetField(name, value string) {
	switch name {
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldEmail:
		r.Email = value
	case FieldDepartment:
		r.Department = value
	case FieldJobTitle:
		r.JobTitle = value
	case FieldLevel:
		r.Level = value
	case FieldStartDate:
		r.StartDate = value
	}
}

func (r NormalizedRow) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

type ValidationIssue struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// AutoFix is produced once at analyze time and immutable afterwards; confirm
// references fixes by id, never re-derives them.
type AutoFix struct {
	ID             string      `json:"id"`
	Row            int         `json:"row"`
	Field          string      `json:"field"`
	CurrentValue   string      `json:"currentValue"`
	SuggestedValue string      `json:"suggestedValue"`
	Confidence     float64     `json:"confidence"`
	Category       FixCategory `json:"category"`
	Issue          string      `json:"issue"`
	AutoAcceptable bool        `json:"autoAcceptable"`
}

// DuplicateCluster is advisory: it never blocks a row on its own.
type DuplicateCluster struct {
	RowNumbers []int   `json:"rowNumbers"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}
