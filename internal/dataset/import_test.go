package dataset_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/api-framework/internal/dataset"
)

// writeWorkbook saves rows to a single-sheet workbook. Numeric strings in
// the age column are stored as numeric cells.
func writeWorkbook(t *testing.T, rows [][]string, numericCol int) string {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("people")
	require.NoError(t, err)

	for r, values := range rows {
		row := sheet.AddRow()
		for c, v := range values {
			cell := row.AddCell()
			if r > 0 && c == numericCol && v != "" {
				n, err := strconv.Atoi(v)
				require.NoError(t, err)
				cell.SetInt(n)
				continue
			}
			cell.Value = v
		}
	}

	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, file.Save(path))
	return path
}

func TestLoadPeopleXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"FName", "ID", "Age", "Email", "LName"},
		{"Erin", "10", "28", "Erin@Example.com", "Black"},
		{"", "", "", "", ""},
		{" Frank ", "11", "52", "", ""},
	}, 2)

	people, err := dataset.LoadPeopleXLSX(path)
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, int64(10), people[0].ID)
	assert.Equal(t, "Erin", people[0].FName)
	assert.Equal(t, "Black", people[0].LName)
	assert.Equal(t, 28, people[0].Age)
	assert.Equal(t, "erin@example.com", people[0].Email)

	assert.Equal(t, int64(11), people[1].ID)
	assert.Equal(t, "Frank", people[1].FName)
	assert.Empty(t, people[1].Email)
}

func TestLoadPeopleXLSX_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		errorMsg string
	}{
		{
			name:     "missing_columns",
			rows:     [][]string{{"id", "fname"}, {"1", "Alice"}},
			errorMsg: "missing columns: age",
		},
		{
			name:     "bad_age",
			rows:     [][]string{{"id", "fname", "age"}, {"1", "Alice", "thirty"}},
			errorMsg: `row 2: age: "thirty" is not a whole number`,
		},
		{
			name:     "fractional_id",
			rows:     [][]string{{"id", "fname", "age"}, {"1.5", "Alice", "30"}},
			errorMsg: "row 2: id",
		},
		{
			name:     "invalid_person",
			rows:     [][]string{{"id", "fname", "age", "email"}, {"1", "Alice", "30", "not-an-email"}},
			errorMsg: "row 2: invalid person",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.rows, -1)

			_, err := dataset.LoadPeopleXLSX(path)
			assert.ErrorContains(t, err, tt.errorMsg)
		})
	}
}

func TestLoadPeopleFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "people.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`people:
  - id: 7
    fname: Grace
    age: 44
    email: GRACE@example.com
`), 0o600))

		people, err := dataset.LoadPeopleFile(path)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "grace@example.com", people[0].Email)
	})

	t.Run("yaml_unknown_field", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yml")
		require.NoError(t, os.WriteFile(path, []byte("people:\n  - id: 1\n    first_name: Grace\n"), 0o600))

		_, err := dataset.LoadPeopleFile(path)
		assert.Error(t, err)
	})

	t.Run("xlsx", func(t *testing.T) {
		path := writeWorkbook(t, [][]string{{"id", "fname", "age"}, {"3", "Heidi", "19"}}, 2)

		people, err := dataset.LoadPeopleFile(path)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, 19, people[0].Age)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := dataset.LoadPeopleFile(filepath.Join(dir, "people.csv"))
		assert.ErrorIs(t, err, dataset.ErrUnsupportedFormat)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := dataset.LoadPeopleFile(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
