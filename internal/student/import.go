package student

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agency-service/internal/events"
	"agency-service/internal/schema"
)

var ErrInvalidCSV = errors.New("invalid CSV file")

// ImportRow is one parsed data line; Line is 1-based and counts the header.
type ImportRow struct {
	Line    int
	Student Student
	Err     error
}

// header aliases accepted for each column
var importColumns = map[string]string{
	"firstname":      "firstName",
	"first_name":     "firstName",
	"lastname":       "lastName",
	"last_name":      "lastName",
	"email":          "email",
	"phone":          "phone",
	"nationality":    "nationality",
	"status":         "status",
	"stage":          "stage",
	"program":        "program",
	"university":     "university",
	"agent":          "agent",
	"ishighpriority": "isHighPriority",
	"high_priority":  "isHighPriority",
	"priority":       "isHighPriority",
}

// ParseCSV reads a header line followed by one student per line. Blank
// lines are ignored. Malformed values mark the row, not the file.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := importColumns[key]; ok {
			index[col] = i
		}
	}
	for _, required := range []string{"firstName", "lastName", "email"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidCSV, required)
		}
	}

	var rows []ImportRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rows = append(rows, ImportRow{Line: line, Err: err})
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, parseRecord(line, record, index))
	}
	return rows, nil
}

func parseRecord(line int, record []string, index map[string]int) ImportRow {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := ImportRow{
		Line: line,
		Student: Student{
			FirstName:   get("firstName"),
			LastName:    get("lastName"),
			Email:       strings.ToLower(get("email")),
			Phone:       get("phone"),
			Nationality: get("nationality"),
			Status:      schema.StudentStatus(strings.ToLower(get("status"))),
			Stage:       schema.Stage(strings.ToLower(get("stage"))),
			Program:     get("program"),
			University:  get("university"),
			Agent:       get("agent"),
		},
	}

	if raw := get("isHighPriority"); raw != "" {
		switch strings.ToLower(raw) {
		case "yes", "y":
			row.Student.IsHighPriority = true
		case "no", "n":
		default:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				row.Err = fmt.Errorf("isHighPriority: %q is not a boolean", raw)
			}
			row.Student.IsHighPriority = v
		}
	}
	return row
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ImportStudents partitions rows: emails already stored or repeated earlier
// in the same file are skipped, invalid rows and failed inserts are failed,
// everything else is imported.
func (s *service) ImportStudents(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	result := &ImportResult{Total: len(rows)}

	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Student.Email != "" {
			emails = append(emails, row.Student.Email)
		}
	}
	existing, err := s.repo.ExistingEmails(ctx, emails)
	if err != nil {
		return nil, err
	}

	validate := schema.NewValidator()
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		if row.Err != nil {
			result.fail(row.Line, row.Err.Error())
			continue
		}
		if err := validate.Struct(&row.Student); err != nil {
			result.fail(row.Line, describe(schema.FieldErrors(err), err))
			continue
		}

		email := row.Student.Email
		if existing[email] || seen[email] {
			result.Skipped++
			continue
		}
		seen[email] = true

		student := row.Student
		applyDefaults(&student)
		if _, err := s.repo.Create(ctx, &student); err != nil {
			if errors.Is(err, ErrEmailExists) {
				result.Skipped++
				continue
			}
			result.fail(row.Line, err.Error())
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.emitter.Emit(ctx, events.New(events.StudentsImported, "student", 0, result))
	}
	return result, nil
}

func (r *ImportResult) fail(line int, reason string) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Row: line, Reason: reason})
}

func describe(fields map[string]string, err error) string {
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, col := range []string{"firstName", "lastName", "email", "status", "stage"} {
		if msg, ok := fields[col]; ok {
			parts = append(parts, col+" "+msg)
		}
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
