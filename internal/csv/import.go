package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anbeck/user-directory/internal/domain/entity"
)

// DuplicateEmailMessage is the per-row violation recorded when a batch
// contains the same email twice.
const DuplicateEmailMessage = "duplicate email in CSV"

// Fatal intake failures. These abort before any row-level validation.
var (
	ErrEmptyFile    = errors.New("File rejected: empty file")
	ErrScanRejected = errors.New("File rejected: virus scan failed")
)

// ParseError carries the parser's structural diagnostics verbatim. It is
// raised before row validation runs; callers surface Details as-is.
type ParseError struct {
	Details []string
}

func (e *ParseError) Error() string { return "CSV parsing failed" }

// Row is a parsed record keyed by canonical header names. Headers that
// canonicalize to something the assembler does not know are carried
// along but never read.
type Row map[string]string

// Outcome is the all-or-nothing result of a batch run. Either Users
// holds every row's canonical record in input order and RowErrors is
// empty, or RowErrors holds every failure and Users is empty. There is
// no partial acceptance.
type Outcome struct {
	Users     []entity.User
	RowErrors []RowError
}

// Accepted reports whether the whole batch passed.
func (o *Outcome) Accepted() bool { return len(o.RowErrors) == 0 }

// Importer runs the intake gate and the batch pipeline over an uploaded
// CSV buffer.
type Importer struct {
	Scanner Scanner
}

func NewImporter(scanner Scanner) *Importer {
	if scanner == nil {
		scanner = NoopScanner{}
	}
	return &Importer{Scanner: scanner}
}

// UsersFromCSV is the import pipeline:
//  1. content scan
//  2. parse, canonicalizing headers
//  3. reject empty files
//  4. assemble the batch (normalize, validate, dedupe)
//
// Scan, parse and empty-file failures come back as errors; a validation
// rejection is a normal Outcome with RowErrors set.
func (imp *Importer) UsersFromCSV(ctx context.Context, data []byte) (*Outcome, error) {
	clean, err := imp.Scanner.Scan(ctx, data)
	if err != nil || !clean {
		return nil, ErrScanRejected
	}

	rows, err := ParseRows(string(data))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	outcome := AssembleBatch(rows)
	return &outcome, nil
}

// ParseRows decodes a CSV document into header-keyed rows. The first
// record is the header row; every header is canonicalized before use.
// Structural problems (ragged records, bare quotes) become a ParseError
// carrying one diagnostic per offense.
func ParseRows(document string) ([]Row, error) {
	r := stdcsv.NewReader(strings.NewReader(document))

	headers, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Details: []string{err.Error()}}
	}
	for i, h := range headers {
		headers[i] = CanonicalizeHeader(h)
	}

	var rows []Row
	var diagnostics []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			diagnostics = append(diagnostics, err.Error())
			var pe *stdcsv.ParseError
			// Field-count mismatches are recoverable; anything else is not.
			if errors.As(err, &pe) && errors.Is(pe.Err, stdcsv.ErrFieldCount) {
				continue
			}
			break
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
	}

	if len(diagnostics) > 0 {
		return nil, &ParseError{Details: diagnostics}
	}
	return rows, nil
}

// AssembleBatch runs the normalizer and validator over every row in
// input order, enforcing email uniqueness within the batch. It never
// aborts early: every failure across the whole batch is collected so the
// uploader can fix a hand-edited file in one round trip. One failing row
// rejects the entire batch.
func AssembleBatch(rows []Row) Outcome {
	users := make([]entity.User, 0, len(rows))
	var rowErrors []RowError
	emails := make(map[string]struct{}, len(rows))

	for index, row := range rows {
		user := entity.User{
			Name:     NormalizeName(row["name"]),
			Email:    NormalizeEmail(row["email"]),
			Location: NormalizeLocation(row["location"]),
			IsActive: NormalizeActive(row["isActive"]),
		}

		if rowErr := ValidateRow(user.Name, user.Email, user.Location, index); rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}

		if _, seen := emails[user.Email]; seen {
			rowErrors = append(rowErrors, RowError{
				Row:    index + 1,
				Errors: []string{DuplicateEmailMessage},
			})
			continue
		}

		emails[user.Email] = struct{}{}
		users = append(users, user)
	}

	if len(rowErrors) > 0 {
		return Outcome{RowErrors: rowErrors}
	}
	return Outcome{Users: users}
}

var _ fmt.Stringer = RowError{}

// String renders a RowError for logs.
func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, strings.Join(e.Errors, "; "))
}
