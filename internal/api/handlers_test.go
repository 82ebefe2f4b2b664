package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargodash/internal/common"
	"cargodash/internal/engine"
	"cargodash/internal/mapview"
	"cargodash/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/skypies/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves a fixed dataset, or a fixed error.
type memSource struct {
	ds      *engine.Dataset
	err     error
	reloads int
}

func (m *memSource) Dataset() (*engine.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ds, nil
}

func (m *memSource) Filter(sel engine.Selection) (engine.View, error) {
	ds, err := m.Dataset()
	if err != nil {
		return engine.View{}, err
	}
	return engine.Filter(ds, sel)
}

func (m *memSource) Reload() (*engine.Dataset, error) {
	m.reloads++
	return m.Dataset()
}

func newTestServer(t *testing.T, src DataSource) *echo.Echo {
	t.Helper()
	e := echo.New()
	NewHandler(src, Settings{
		TopN:     5,
		LineRows: 50,
		Page:     mapview.Page{Title: "Voyages", CenterLat: 10, CenterLon: -20, Zoom: 2.3, Columns: models.FilterColumns, Axes: models.FilterColumns},
	}).RegisterRoutes(e)
	return e
}

func testSource() *memSource {
	port := func(name string) models.Port {
		return models.Port{Name: name, Pos: geo.Latlong{Lat: float64(len(name)), Long: float64(len(name)) * 2}}
	}
	voyages := []models.Voyage{
		{LoadPort: port("A"), DischPort: port("XX"), Commodity: "coal", Intake: 10},
		{LoadPort: port("BBB"), DischPort: port("XX"), Commodity: "grain", Intake: 5},
		{LoadPort: port("A"), DischPort: port("YYYY"), Commodity: "coal", Intake: 3},
	}
	return &memSource{ds: engine.NewDataset("mem", voyages)}
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetVoyages(t *testing.T) {
	e := newTestServer(t, testSource())

	rec := get(t, e, "/api/voyages?load_port=A")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data  []models.VoyageRow `json:"data"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "XX", body.Data[0].DischPort)
	assert.Equal(t, "YYYY", body.Data[1].DischPort)
	assert.InDelta(t, 3.0, body.Data[1].Intake, 1e-9)
}

func TestGetVoyagesPagination(t *testing.T) {
	e := newTestServer(t, testSource())

	tests := []struct {
		query string
		rows  int
	}{
		{"limit=1", 1},
		{"limit=2&offset=2", 1},
		{"offset=10", 0},
		{"limit=-3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, e, "/api/voyages?"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Data  []models.VoyageRow `json:"data"`
				Total int                `json:"total"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Data, tt.rows)
			assert.Equal(t, 3, body.Total)
		})
	}
}

func TestGetAggregate(t *testing.T) {
	e := newTestServer(t, testSource())

	rec := get(t, e, "/api/aggregate?by=disch_port")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.AggregateItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Equal(t, []models.AggregateItem{
		{Label: "XX", Intake: 15, Voyages: 2},
		{Label: "YYYY", Intake: 3, Voyages: 1},
	}, items)

	rec = get(t, e, "/api/aggregate?by=disch_port&top=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Equal(t, models.OtherLabel, items[len(items)-1].Label)
}

func TestBadRequests(t *testing.T) {
	e := newTestServer(t, testSource())

	for _, target := range []string{
		"/api/voyages?vessel=Star",
		"/api/aggregate?by=vessel",
		"/api/aggregate?top=many",
		"/api/charts/bar.gif",
		"/api/charts/bar.png?stat=median",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, e, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "message")
		})
	}
}

func TestGetOptions(t *testing.T) {
	rec := get(t, newTestServer(t, testSource()), "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"A", "BBB"}, opts[models.ColLoadPort])
	assert.Equal(t, []string{"coal", "grain"}, opts[models.ColCommodity])
}

func TestGetSummary(t *testing.T) {
	rec := get(t, newTestServer(t, testSource()), "/api/summary?commodity_name=coal")
	require.Equal(t, http.StatusOK, rec.Code)

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 2, data.Voyages)
	assert.InDelta(t, 13.0, data.TotalIntake, 1e-9)
}

func TestGetMap(t *testing.T) {
	rec := get(t, newTestServer(t, testSource()), "/api/map.geojson?load_port=BBB")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get(echo.HeaderContentType))

	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	// two markers, one route, one arrowhead
	assert.Len(t, doc.Features, 4)
}

func TestGetChart(t *testing.T) {
	e := newTestServer(t, testSource())

	for _, kind := range []string{"bar", "line", "pie"} {
		t.Run(kind, func(t *testing.T) {
			rec := get(t, e, fmt.Sprintf("/api/charts/%s.png?x=load_port", kind))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
		})
	}

	t.Run("svg", func(t *testing.T) {
		rec := get(t, e, "/api/charts/bar.svg")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<svg")
	})

	t.Run("unknown chart", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, e, "/api/charts/radar.png").Code)
	})

	t.Run("nothing to plot", func(t *testing.T) {
		rec := get(t, e, "/api/charts/pie.png?commodity_name=ore")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetReport(t *testing.T) {
	rec := get(t, newTestServer(t, testSource()), "/api/report.pdf?disch_port=XX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestGetDashboard(t *testing.T) {
	rec := get(t, newTestServer(t, testSource()), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Voyages</title>")
}

func TestReload(t *testing.T) {
	src := testSource()
	e := newTestServer(t, src)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"voyages":3}`, rec.Body.String())
	assert.Equal(t, 1, src.reloads)
}

func TestLoadErrorIsServerError(t *testing.T) {
	src := &memSource{err: &common.LoadError{Path: "geo_data.xlsx", Err: fs.ErrNotExist}}
	e := newTestServer(t, src)

	rec := get(t, e, "/api/voyages")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "geo_data.xlsx")
}

func TestSingleCategoryView(t *testing.T) {
	e := newTestServer(t, testSource())

	for _, target := range []string{
		"/api/charts/line.png?commodity_name=coal",
		"/api/charts/line.svg?load_port=BBB",
		"/api/charts/pie.png?commodity_name=coal",
		"/api/report.pdf?commodity_name=coal",
		"/api/report.pdf?load_port=BBB",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, e, target)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}
