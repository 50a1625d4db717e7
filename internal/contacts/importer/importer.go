// Package importer reads and writes the line-oriented bulk contact format.
//
// A record is seven lines: first name, last name, street, city,
// "<state> <zip>", phone and email. The older eight-line layout keeps state
// and zip on separate lines and puts email before phone. One blank line may
// separate records. Any other blank line is an empty field, so a record whose
// first name is missing still occupies its full set of lines.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

// Format selects the record layout.
type Format int

const (
	FormatStandard Format = iota
	FormatSplitStateZip
)

// ParseFormat resolves a format name from the CLI or a query parameter.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard":
		return FormatStandard, nil
	case "split", "split-state-zip":
		return FormatSplitStateZip, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown import format %q", name))
	}
}

func (f Format) linesPerRecord() int {
	if f == FormatSplitStateZip {
		return 8
	}
	return 7
}

// ParseError locates a malformed record in the input.
type ParseError struct {
	Record int // 1-based record index
	Line   int // 1-based line number in the input
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d (line %d): %s", e.Record, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidInput, e.Error())
}

// Parse reads every record from r. Parsed entries carry no ID and have not
// been validated.
func Parse(r io.Reader, format Format) ([]models.Entry, error) {
	scanner := bufio.NewScanner(r)
	want := format.linesPerRecord()

	var (
		entries   []models.Entry
		fields    = make([]string, 0, want)
		lineNo    int
		start     int
		separable bool
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" && len(fields) == 0 && separable {
			separable = false
			continue
		}
		if len(fields) == 0 {
			start = lineNo
		}
		fields = append(fields, line)
		if len(fields) < want {
			continue
		}
		entry, err := buildEntry(fields, format, len(entries)+1, start)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		fields = fields[:0]
		separable = true
	}
	if err := scanner.Err(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput,
				fmt.Sprintf("import body too large: limit is %d bytes", tooLarge.Limit))
		}
		return nil, fmt.Errorf("read import: %w", err)
	}
	if len(fields) > 0 && !allBlank(fields) {
		return nil, &ParseError{
			Record: len(entries) + 1,
			Line:   start,
			Reason: fmt.Sprintf("incomplete record: %d of %d lines", len(fields), want),
		}
	}
	return entries, nil
}

// allBlank reports whether a trailing partial record is only padding.
func allBlank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

func buildEntry(f []string, format Format, record, start int) (models.Entry, error) {
	var state, zipText, phone, email string
	zipLine := start + 4
	switch format {
	case FormatSplitStateZip:
		state, zipText, email, phone = f[4], f[5], f[6], f[7]
		zipLine = start + 5
	default:
		parts := strings.Fields(f[4])
		if len(parts) != 2 {
			return models.Entry{}, &ParseError{Record: record, Line: start + 4, Reason: fmt.Sprintf("expected \"<state> <zip>\", got %q", f[4])}
		}
		state, zipText, phone, email = parts[0], parts[1], f[5], f[6]
	}
	zip, err := strconv.Atoi(zipText)
	if err != nil {
		return models.Entry{}, &ParseError{Record: record, Line: zipLine, Reason: fmt.Sprintf("zip %q is not a number", zipText)}
	}
	return models.Entry{
		Name:    models.Name{First: f[0], Last: f[1]},
		Address: models.Address{Street: f[2], City: f[3], State: state, Zip: zip},
		Phone:   phone,
		Email:   email,
	}, nil
}

// Write emits entries in the standard layout, one blank line between records.
func Write(w io.Writer, entries []models.Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%s\n%s\n%s\n%s\n%s %05d\n%s\n%s\n",
			e.Name.First, e.Name.Last, e.Address.Street, e.Address.City,
			e.Address.State, e.Address.Zip, e.Phone, e.Email)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
