package importer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

const standardInput = `John
Smith
123 Main Street
San Francisco
CA 94105
555-555-1234
john.smith@example.com

Jane
Doe
1 Elm Road
Hayward
CA 94542
510-555-0100
jane@example.com
`

func TestParseStandard(t *testing.T) {
	entries, err := Parse(strings.NewReader(standardInput), FormatStandard)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, models.Entry{
		Name:    models.Name{First: "John", Last: "Smith"},
		Address: models.Address{Street: "123 Main Street", City: "San Francisco", State: "CA", Zip: 94105},
		Phone:   "555-555-1234",
		Email:   "john.smith@example.com",
	}, entries[0])
	assert.Equal(t, "Doe", entries[1].Name.Last)
	assert.False(t, entries[1].HasID())
}

func TestParseSplitStateZip(t *testing.T) {
	input := "Jane\nDoe\n1 Elm Road\nHayward\nCA\n94542\njane@example.com\n510-555-0100\n"
	entries, err := Parse(strings.NewReader(input), FormatSplitStateZip)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CA", entries[0].Address.State)
	assert.Equal(t, 94542, entries[0].Address.Zip)
	assert.Equal(t, "510-555-0100", entries[0].Phone)
	assert.Equal(t, "jane@example.com", entries[0].Email)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		record int
		line   int
	}{
		{"zip not a number", "A\nB\nC\nD\nCA 9x105\nP\nE\n", 1, 5},
		{"missing zip", "A\nB\nC\nD\nCA\nP\nE\n", 1, 5},
		{"second record", standardInput + "\nA\nB\nC\nD\nCA oops\nP\nE\n", 3, 21},
		{"truncated", standardInput + "\nA\nB\n", 3, 17},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input), FormatStandard)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tc.record, pe.Record)
			assert.Equal(t, tc.line, pe.Line)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	entries, err := Parse(strings.NewReader("\n\n"), FormatStandard)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseBlankFirstName(t *testing.T) {
	input := "\nSmith\n123 Main Street\nSan Francisco\nCA 94105\n555-555-1234\njohn@example.com\n\n" +
		"\nDoe\n1 Elm Road\nHayward\nCA 94542\n510-555-0100\njane@example.com\n\n" +
		"Jane\nDoe\n1 Elm Road\nHayward\nCA 94542\n510-555-0100\njane@example.com\n"

	entries, err := Parse(strings.NewReader(input), FormatStandard)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, models.Name{First: "", Last: "Smith"}, entries[0].Name)
	assert.Equal(t, 94105, entries[0].Address.Zip)
	assert.Equal(t, models.Name{First: "", Last: "Doe"}, entries[1].Name)
	assert.Equal(t, "jane@example.com", entries[1].Email)
	assert.Equal(t, models.Name{First: "Jane", Last: "Doe"}, entries[2].Name)
}

func TestParseTrailingBlankLines(t *testing.T) {
	entries, err := Parse(strings.NewReader(standardInput+"\n\n\n"), FormatStandard)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestParseBodyTooLarge(t *testing.T) {
	body := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(strings.NewReader(strings.Repeat(standardInput, 10))), 64)

	_, err := Parse(body, FormatStandard)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "got %v", err)
	assert.Contains(t, err.Error(), "import body too large")
}

func TestWriteThenParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(standardInput), FormatStandard)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries))
	assert.Equal(t, standardInput, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("split")
	require.NoError(t, err)
	assert.Equal(t, FormatSplitStateZip, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatStandard, f)

	_, err = ParseFormat("xml")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
