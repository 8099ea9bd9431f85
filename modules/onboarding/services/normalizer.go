package services

import (
	"strings"

	"github.com/peopleforge/peopleforge/modules/onboarding/domain/entities/batch"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/tabular"
)

// canonicalHeaders maps squashed header names (lowercase, separators removed)
// to canonical field names. Unrecognized headers land in Extra untouched.
var canonicalHeaders = map[string]string{
	"firstname":    batch.FieldFirstName,
	"givenname":    batch.FieldFirstName,
	"lastname":     batch.FieldLastName,
	"surname":      batch.FieldLastName,
	"familyname":   batch.FieldLastName,
	"email":        batch.FieldEmail,
	"emailaddress": batch.FieldEmail,
	"department":   batch.FieldDepartment,
	"dept":         batch.FieldDepartment,
	"jobtitle":     batch.FieldJobTitle,
	"title":        batch.FieldJobTitle,
	"position":     batch.FieldJobTitle,
	"role":         batch.FieldJobTitle,
	"level":        batch.FieldLevel,
	"grade":        batch.FieldLevel,
	"startdate":    batch.FieldStartDate,
	"start":        batch.FieldStartDate,
	"hiredate":     batch.FieldStartDate,
}

// Normalize maps raw rows onto canonical fields. It trims, lowercases emails,
// and nothing else: casing and coercion problems are the validator's to
// report, so a re-validation after fix application sees the same inputs the
// first pass did.
func Normalize(table *tabular.Table) []batch.NormalizedRow {
	fieldByHeader := make(map[string]string, len(table.Headers))
	for _, h := range table.Headers {
		if field, ok := canonicalHeaders[squashHeader(h)]; ok {
			fieldByHeader[h] = field
		}
	}

	rows := make([]batch.NormalizedRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		// Row numbers stay anchored to the source sheet so a skipped blank
		// row never shifts the numbering users see: data row n is sheet row
		// n plus the header.
		row := batch.NormalizedRow{
			Row: raw.Number - batch.HeaderOffset + 1,
			Raw: raw.Cells,
		}
		for header, value := range raw.Cells {
			field, ok := fieldByHeader[header]
			if !ok {
				if row.Extra == nil {
					row.Extra = map[string]string{}
				}
				row.Extra[header] = value
				continue
			}
			value = strings.TrimSpace(value)
			if field == batch.FieldEmail {
				value = strings.ToLower(value)
			}
			row.SetField(field, value)
		}
		rows = append(rows, row)
	}
	return rows
}

func squashHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, h)
}
