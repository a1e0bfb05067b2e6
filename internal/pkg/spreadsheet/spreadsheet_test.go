package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadSheet(t *testing.T) {
	clockOut := "17:30"
	table := Table{
		Sheet:   "Payroll",
		Columns: []string{"Employee", "Hours", "Wage", "Clock out", "Break"},
		Rows: [][]any{
			{"Ana", decimal.RequireFromString("8.5"), decimal.RequireFromString("170.00"), &clockOut, true},
			{"Ben", 12, 240.25, (*string)(nil), false},
		},
	}

	data, err := Write(table)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := ReadSheet(bytes.NewReader(data), "Payroll")
	require.NoError(t, err)

	assert.Equal(t, "Payroll", got.Sheet)
	assert.Equal(t, table.Columns, got.Columns)
	require.Len(t, got.Rows, 2)

	assert.Equal(t, "Ana", got.Cell(0, 0))
	assert.True(t, decimal.RequireFromString(got.Cell(0, 1)).Equal(decimal.RequireFromString("8.5")))
	assert.True(t, decimal.RequireFromString(got.Cell(0, 2)).Equal(decimal.NewFromInt(170)))
	assert.Equal(t, "17:30", got.Cell(0, 3))
	assert.Equal(t, "", got.Cell(1, 3))
	assert.True(t, decimal.RequireFromString(got.Cell(1, 2)).Equal(decimal.RequireFromString("240.25")))
}

func TestWrite_MultipleSheets(t *testing.T) {
	data, err := Write(
		Table{Sheet: "First", Columns: []string{"a"}, Rows: [][]any{{"1"}}},
		Table{Sheet: "Second", Columns: []string{"b"}, Rows: [][]any{{"2"}}},
	)
	require.NoError(t, err)

	first, err := ReadSheet(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, "First", first.Sheet)

	second, err := ReadSheet(bytes.NewReader(data), "Second")
	require.NoError(t, err)
	assert.Equal(t, "2", second.Cell(0, 0))

	_, err = ReadSheet(bytes.NewReader(data), "Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestWrite_NoTables(t *testing.T) {
	_, err := Write()
	assert.Error(t, err)
}

func TestReadSheet_NotAWorkbook(t *testing.T) {
	_, err := ReadSheet(bytes.NewReader([]byte("date,name\n")), "")
	assert.Error(t, err)
}

func TestTable_Column(t *testing.T) {
	table := Table{Columns: []string{" Date ", "NAME"}}
	assert.Equal(t, 0, table.Column("date"))
	assert.Equal(t, 1, table.Column("name"))
	assert.Equal(t, -1, table.Column("type"))
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-12-25", "2024-12-25", true},
		{"2024/01/01", "2024-01-01", true},
		{"7/4/2024", "2024-07-04", true},
		{"45658", "2025-01-01", true},
		{"", "", false},
		{"christmas", "", false},
		{"0", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.input)
		assert.Equal(t, c.ok, ok, "ParseDate(%q)", c.input)
		if c.ok {
			assert.Equal(t, c.want, got.Format("2006-01-02"), "ParseDate(%q)", c.input)
		}
	}
}
