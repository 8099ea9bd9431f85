package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

type ErrorKind string

const (
	ErrKindUnsupportedType ErrorKind = "unsupported_type"
	ErrKindTooLarge        ErrorKind = "too_large"
	ErrKindMalformed       ErrorKind = "malformed"
	ErrKindTooManyRows     ErrorKind = "too_many_rows"
	ErrKindEmpty           ErrorKind = "empty"
)

// ParseError is the single failure type of the parser: any problem with the
// upload aborts the whole analyze call and nothing is persisted.
type ParseError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("parse: %s: %v", e.Message, e.cause)
	}
	return "parse: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.cause }

func newParseError(kind ErrorKind, message string, cause error) *ParseError {
	return &ParseError{Kind: kind, Message: message, cause: cause}
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RawRow is one data row keyed by header. Number is the spreadsheet row the
// cells came from (1-based, header on row 1).
type RawRow struct {
	Number int
	Cells  map[string]string
}

type Table struct {
	Headers []string
	Rows    []RawRow
}

type Parser struct {
	maxBytes int64
	maxRows  int
}

func NewParser(maxBytes int64, maxRows int) *Parser {
	return &Parser{maxBytes: maxBytes, maxRows: maxRows}
}

// Parse reads the upload into a Table. The size ceiling is enforced while
// reading, before any workbook parsing starts.
func (p *Parser) Parse(filename string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, newParseError(ErrKindMalformed, "reading upload", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, newParseError(ErrKindTooLarge, fmt.Sprintf("file exceeds %d bytes", p.maxBytes), nil)
	}
	if len(data) == 0 {
		return nil, newParseError(ErrKindEmpty, "file is empty", nil)
	}

	var grid [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		if !mimetype.Detect(data).Is(xlsxMIME) {
			return nil, newParseError(ErrKindUnsupportedType, "content does not match .xlsx", nil)
		}
		grid, err = readXLSX(data)
	case ".csv":
		if detected := mimetype.Detect(data); !detected.Is("text/csv") && !detected.Is("text/plain") {
			return nil, newParseError(ErrKindUnsupportedType, "content does not match .csv", nil)
		}
		grid, err = readCSV(data)
	default:
		return nil, newParseError(ErrKindUnsupportedType, "only .xlsx and .csv files are accepted", nil)
	}
	if err != nil {
		return nil, err
	}

	return p.toTable(grid)
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newParseError(ErrKindMalformed, "unreadable workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, newParseError(ErrKindEmpty, "workbook has no worksheet", nil)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, newParseError(ErrKindMalformed, "reading worksheet", err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	// FieldsPerRecord default: every record must match the header width.
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, newParseError(ErrKindMalformed, "inconsistent or unreadable delimited text", err)
	}
	return rows, nil
}

func (p *Parser) toTable(grid [][]string) (*Table, error) {
	if len(grid) == 0 {
		return nil, newParseError(ErrKindEmpty, "sheet has no header row", nil)
	}

	headers := make([]string, 0, len(grid[0]))
	for _, h := range grid[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) == 0 || allBlank(headers) {
		return nil, newParseError(ErrKindEmpty, "header row is blank", nil)
	}

	var rows []RawRow
	for i, record := range grid[1:] {
		if allBlank(record) {
			continue
		}
		if len(record) > len(headers) {
			return nil, newParseError(ErrKindMalformed,
				fmt.Sprintf("row %d has %d columns, header has %d", i+2, len(record), len(headers)), nil)
		}
		cells := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(record) {
				cells[h] = record[j]
			} else {
				cells[h] = ""
			}
		}
		rows = append(rows, RawRow{Number: i + 2, Cells: cells})
		if len(rows) > p.maxRows {
			return nil, newParseError(ErrKindTooManyRows, fmt.Sprintf("more than %d data rows", p.maxRows), nil)
		}
	}
	if len(rows) == 0 {
		return nil, newParseError(ErrKindEmpty, "sheet has no data rows", nil)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
