package engine

import (
	"path/filepath"
	"testing"

	"cargodash/internal/models"

	"github.com/skypies/geo"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var header = []any{
	" load_port", "lat_from", "lon_from", "disch_port ", "lat_to", "lon_to", "commodity_name", "voy_intake, tones ",
}

// writeWorkbook saves rows (header first) to a fresh .xlsx in a temp dir.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "geo_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func voyage(load, disch, commodity string, intake float64) models.Voyage {
	return models.Voyage{
		LoadPort:  models.Port{Name: load, Pos: geo.Latlong{Lat: 1, Long: 2}},
		DischPort: models.Port{Name: disch, Pos: geo.Latlong{Lat: 3, Long: 4}},
		Commodity: commodity,
		Intake:    intake,
	}
}

// threeVoyages is [{A,X,10}, {B,X,5}, {A,Y,3}].
func threeVoyages() *Dataset {
	return NewDataset("mem", []models.Voyage{
		voyage("A", "X", "coal", 10),
		voyage("B", "X", "grain", 5),
		voyage("A", "Y", "coal", 3),
	})
}
