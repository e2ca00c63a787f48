package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/api-framework/internal/core/domain"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

var requiredColumns = []string{"id", "fname", "age"}

// LoadPeopleFile reads people from an .xlsx workbook or from a YAML file
// shaped like the embedded fixture.
func LoadPeopleFile(path string) ([]domain.Person, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadPeopleXLSX(path)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var f peopleFile
		if err := decodeYAML(path, data, &f); err != nil {
			return nil, err
		}
		for i := range f.People {
			if err := f.People[i].Validate(); err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", path, i, err)
			}
		}
		return f.People, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadPeopleXLSX reads the first sheet of a workbook. The first row names the
// columns (id, fname, lname, age, email, in any order); blank rows are skipped.
func LoadPeopleXLSX(path string) ([]domain.Person, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	sheet := file.Sheets[0]

	var (
		columns map[string]int
		people  []domain.Person
		rowIdx  int
	)

	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		rowIdx++
		if columns == nil {
			cols, herr := headerColumns(r, sheet.MaxCol)
			if herr != nil {
				return herr
			}
			columns = cols
			return nil
		}

		get := func(name string) string {
			i, ok := columns[name]
			if !ok {
				return ""
			}
			return cellString(r, i)
		}

		if get("id") == "" && get("fname") == "" {
			return nil
		}

		id, err := parseWhole(get("id"))
		if err != nil {
			return fmt.Errorf("row %d: id: %w", rowIdx, err)
		}
		age, err := parseWhole(get("age"))
		if err != nil {
			return fmt.Errorf("row %d: age: %w", rowIdx, err)
		}

		p := domain.Person{
			ID:    id,
			FName: get("fname"),
			LName: get("lname"),
			Age:   int(age),
			Email: get("email"),
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", rowIdx, err)
		}
		people = append(people, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if columns == nil {
		return nil, fmt.Errorf("%s: sheet %q is empty", path, sheet.Name)
	}

	return people, nil
}

func headerColumns(r *xlsx.Row, maxCol int) (map[string]int, error) {
	columns := make(map[string]int, maxCol)
	for i := 0; i < maxCol; i++ {
		name := strings.ToLower(cellString(r, i))
		if name != "" {
			columns[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func cellString(r *xlsx.Row, i int) string {
	c := r.GetCell(i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.String())
}

// parseWhole accepts "30" as well as the "30.0" spreadsheets produce for
// numeric cells.
func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(f), nil
}
