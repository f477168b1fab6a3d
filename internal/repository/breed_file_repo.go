package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"catmatch/internal/domain"
)

var ErrUnsupportedCatalogFormat = errors.New("unsupported catalog file format")

var (
	idColumns          = []string{"cat_id", "breed_id"}
	nameColumns        = []string{"cat", "breed", "name"}
	descriptionColumns = []string{"cats", "description"}
)

// FileBreedRepository une la matriz de rasgos con la tabla de descripciones
// (CSV o XLSX) usando cat_id como clave.
type FileBreedRepository struct {
	traitsPath string
	breedsPath string
}

func NewFileBreedRepository(traitsPath, breedsPath string) *FileBreedRepository {
	return &FileBreedRepository{traitsPath: traitsPath, breedsPath: breedsPath}
}

func (r *FileBreedRepository) ListBreeds(ctx context.Context) ([]domain.BreedRecord, error) {
	traits, err := readTable(r.traitsPath)
	if err != nil {
		return nil, fmt.Errorf("read traits table: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var breeds *table
	if strings.TrimSpace(r.breedsPath) != "" {
		breeds, err = readTable(r.breedsPath)
		if err != nil {
			return nil, fmt.Errorf("read breeds table: %w", err)
		}
	}

	return joinTables(traits, breeds)
}

// table es una hoja con encabezados normalizados.
type table struct {
	columns map[string]int
	rows    [][]string
}

func newTable(records [][]string) (*table, error) {
	if len(records) == 0 {
		return nil, errors.New("empty table")
	}
	t := &table{columns: make(map[string]int), rows: records[1:]}
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		if _, ok := t.columns[strings.ToLower(h)]; !ok {
			t.columns[strings.ToLower(h)] = i
		}
	}
	return t, nil
}

// index devuelve la primera columna presente entre los alias.
func (t *table) index(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := t.columns[strings.ToLower(a)]; ok {
			return i, true
		}
	}
	return -1, false
}

func (t *table) cell(row []string, aliases ...string) string {
	i, ok := t.index(aliases...)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTable(path string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCatalogFormat, path)
	}
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return newTable(records)
}

func readXLSX(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return newTable(rows)
}

func joinTables(traits, breeds *table) ([]domain.BreedRecord, error) {
	if _, ok := traits.index(idColumns...); !ok {
		return nil, fmt.Errorf("traits table: missing %s column", idColumns[0])
	}

	// Primera fila por cat_id, igual que un left join sobre claves unicas.
	byID := make(map[string][]string)
	if breeds != nil {
		if _, ok := breeds.index(idColumns...); !ok {
			return nil, fmt.Errorf("breeds table: missing %s column", idColumns[0])
		}
		for _, row := range breeds.rows {
			id := normalizeID(breeds.cell(row, idColumns...))
			if id == "" {
				continue
			}
			if _, ok := byID[id]; !ok {
				byID[id] = row
			}
		}
	}

	flagCols := make([]int, domain.NumFlags)
	for _, f := range domain.AllFlags() {
		i, ok := traits.index(f.Label(), f.Key())
		if !ok {
			i = -1
		}
		flagCols[f] = i
	}

	catalog := newBreedCollector()
	for _, row := range traits.rows {
		id := normalizeID(traits.cell(row, idColumns...))
		name := traits.cell(row, nameColumns...)
		desc := traits.cell(row, descriptionColumns...)
		if match, ok := byID[id]; ok && id != "" {
			if v := breeds.cell(match, nameColumns...); v != "" {
				name = v
			}
			if v := breeds.cell(match, descriptionColumns...); v != "" {
				desc = v
			}
		}
		if name == "" {
			name = id
		}
		rec := domain.BreedRecord{ID: id, Name: name, Description: desc}
		for f, col := range flagCols {
			if col >= 0 && col < len(row) {
				rec.Flags[f] = normalizeFlag(row[col])
			}
		}
		catalog.add(rec)
	}
	return catalog.breeds(), nil
}

// normalizeID evita que "3" y "3.0" (celdas numericas exportadas) no coincidan.
func normalizeID(s string) string {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return s
}

// normalizeFlag devuelve 1 para valores numericos distintos de cero y para
// celdas booleanas TRUE. Vacios, NaN, FALSE y otro texto cuentan como 0.
func normalizeFlag(s string) uint8 {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0
	case strings.EqualFold(s, "true"):
		return 1
	case strings.EqualFold(s, "false"):
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v == 0 {
		return 0
	}
	return 1
}
