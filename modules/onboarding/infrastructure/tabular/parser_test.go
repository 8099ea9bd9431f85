package tabular_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/tabular"
)

const testMaxBytes = 1 << 20

func parse(t *testing.T, name, content string) (*tabular.Table, error) {
	t.Helper()
	p := tabular.NewParser(testMaxBytes, 100)
	return p.Parse(name, strings.NewReader(content))
}

func requireParseKind(t *testing.T, err error, kind tabular.ErrorKind) {
	t.Helper()
	var pe *tabular.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, kind, pe.Kind)
}

func TestParse_CSV(t *testing.T) {
	table, err := parse(t, "hires.csv",
		"First Name,Last Name,Email\n"+
			"Ada,Lovelace,ada@example.com\n"+
			",,\n"+ // fully blank rows are skipped
			"Grace,Hopper,grace@example.com\n")
	require.NoError(t, err)

	require.Equal(t, []string{"First Name", "Last Name", "Email"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 2, table.Rows[0].Number)
	require.Equal(t, "ada@example.com", table.Rows[0].Cells["Email"])
	require.Equal(t, 4, table.Rows[1].Number)
	require.Equal(t, "Grace", table.Rows[1].Cells["First Name"])
}

func TestParse_InconsistentColumns(t *testing.T) {
	_, err := parse(t, "hires.csv", "a,b,c\n1,2,3,4\n")
	requireParseKind(t, err, tabular.ErrKindMalformed)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := parse(t, "hires.pdf", "whatever")
	requireParseKind(t, err, tabular.ErrKindUnsupportedType)
}

func TestParse_MismatchedContent(t *testing.T) {
	// Declared .xlsx, actually plain text.
	_, err := parse(t, "hires.xlsx", "First Name,Last Name\nAda,Lovelace\n")
	requireParseKind(t, err, tabular.ErrKindUnsupportedType)
}

func TestParse_TooLarge(t *testing.T) {
	p := tabular.NewParser(16, 100)
	_, err := p.Parse("hires.csv", strings.NewReader("a,b\n"+strings.Repeat("x,y\n", 100)))
	requireParseKind(t, err, tabular.ErrKindTooLarge)
}

func TestParse_TooManyRows(t *testing.T) {
	p := tabular.NewParser(testMaxBytes, 2)
	_, err := p.Parse("hires.csv", strings.NewReader("a,b\n1,2\n3,4\n5,6\n"))
	requireParseKind(t, err, tabular.ErrKindTooManyRows)
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := parse(t, "hires.csv", "First Name,Last Name,Email\n")
	requireParseKind(t, err, tabular.ErrKindEmpty)
}

func TestParse_XLSXRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"First Name", "Last Name", "Email"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Ada", "Lovelace", "ada@example.com"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	p := tabular.NewParser(testMaxBytes, 100)
	table, err := p.Parse("hires.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "Ada", table.Rows[0].Cells["First Name"])
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tabular.WriteTemplate(&buf))

	p := tabular.NewParser(testMaxBytes, 100)
	_, err := p.Parse("template.xlsx", bytes.NewReader(buf.Bytes()))
	requireParseKind(t, err, tabular.ErrKindEmpty) // header row only, no data
}
