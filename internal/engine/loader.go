package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cargodash/internal/common"
	"cargodash/internal/models"

	"github.com/skypies/geo"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet voyages are read from.
const DefaultSheet = "data"

var errSheetEmpty = errors.New("sheet has no header row")

// Load reads a voyage spreadsheet into a Dataset. Spreadsheets are read
// through excelize; .csv files are treated as a single sheet and the sheet
// argument is ignored. Any failure is a *common.LoadError.
func Load(path, sheet string) (*Dataset, error) {
	start := time.Now()
	if sheet == "" {
		sheet = DefaultSheet
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &common.LoadError{Path: path, Err: err}
	}

	var (
		table [][]string
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		sheet = ""
		table, err = readCSV(path)
	} else {
		table, err = readSheet(path, sheet)
	}
	if err != nil {
		return nil, &common.LoadError{Path: path, Sheet: sheet, Err: err}
	}

	ds, err := parseTable(path, sheet, table)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset loaded", "path", path, "rows", ds.Len(), "duration", time.Since(start))
	return ds, nil
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("closing workbook", "path", path, "error", cerr)
		}
	}()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("look up sheet: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("sheet not found (have %s)", strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// parseTable maps header names onto columns and converts each row into a
// typed voyage. Row numbers in errors are 1-based and count the header.
func parseTable(path, sheet string, table [][]string) (*Dataset, error) {
	if len(table) == 0 {
		return nil, &common.LoadError{Path: path, Sheet: sheet, Err: errSheetEmpty}
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		name := strings.TrimSpace(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range models.RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &common.LoadError{Path: path, Sheet: sheet, Missing: missing}
	}

	voyages := make([]models.Voyage, 0, len(table)-1)
	for n, rec := range table[1:] {
		if blank(rec) {
			continue
		}
		row := n + 2

		cell := func(name string) string {
			i := index[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		number := func(name string, limit float64) (float64, error) {
			f, err := strconv.ParseFloat(cell(name), 64)
			switch {
			case err != nil:
			case math.IsNaN(f) || math.IsInf(f, 0):
				err = fmt.Errorf("%v is not a finite number", f)
			case limit > 0 && (f < -limit || f > limit):
				err = fmt.Errorf("%v out of range [-%v, %v]", f, limit, limit)
			}
			if err != nil {
				return 0, &common.LoadError{Path: path, Sheet: sheet, Row: row, Column: name, Err: err}
			}
			return f, nil
		}

		var (
			vals [5]float64
			err  error
		)
		for i, c := range []struct {
			name  string
			limit float64
		}{
			{models.ColLatFrom, 90}, {models.ColLonFrom, 180},
			{models.ColLatTo, 90}, {models.ColLonTo, 180},
			{models.ColIntake, 0},
		} {
			if vals[i], err = number(c.name, c.limit); err != nil {
				return nil, err
			}
		}

		voyages = append(voyages, models.Voyage{
			LoadPort:  models.Port{Name: cell(models.ColLoadPort), Pos: geo.Latlong{Lat: vals[0], Long: vals[1]}},
			DischPort: models.Port{Name: cell(models.ColDischPort), Pos: geo.Latlong{Lat: vals[2], Long: vals[3]}},
			Commodity: cell(models.ColCommodity),
			Intake:    vals[4],
		})
	}

	return NewDataset(path, voyages), nil
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
