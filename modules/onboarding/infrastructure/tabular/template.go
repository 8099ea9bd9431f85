package tabular

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateHeaders is the canonical header row the parser expects.
var TemplateHeaders = []string{
	"First Name",
	"Last Name",
	"Email",
	"Department",
	"Job Title",
	"Level",
	"Start Date",
}

// WriteTemplate emits a blank import workbook with only the header row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	row := make([]interface{}, len(TemplateHeaders))
	for i, h := range TemplateHeaders {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	return f.Write(w)
}
