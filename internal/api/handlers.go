package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"cargodash/internal/charts"
	"cargodash/internal/common"
	"cargodash/internal/engine"
	"cargodash/internal/mapview"
	"cargodash/internal/models"
	"cargodash/internal/report"

	"github.com/labstack/echo/v4"
)

// DataSource hands out the dashboard's dataset and filtered views.
type DataSource interface {
	Dataset() (*engine.Dataset, error)
	Filter(sel engine.Selection) (engine.View, error)
	Reload() (*engine.Dataset, error)
}

// Settings are the dashboard knobs the handlers need.
type Settings struct {
	TopN     int
	LineRows int
	Page     mapview.Page
}

type Handler struct {
	src      DataSource
	settings Settings
}

func NewHandler(src DataSource, settings Settings) *Handler {
	return &Handler{src: src, settings: settings}
}

// Query parameters that are not filter columns.
var reservedParams = []string{"limit", "offset", "by", "top", "x", "stat"}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetDashboard)

	api := e.Group("/api")
	api.GET("/options", h.GetOptions)
	api.GET("/voyages", h.GetVoyages)
	api.GET("/summary", h.GetSummary)
	api.GET("/aggregate", h.GetAggregate)
	api.GET("/map.geojson", h.GetMap)
	api.GET("/charts/:name", h.GetChart)
	api.GET("/report.pdf", h.GetReport)
	api.POST("/reload", h.Reload)
}

// --- HELPERS ---

// httpError maps domain errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, common.ErrConfig):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, charts.ErrNoData):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	case errors.Is(err, common.ErrLoad):
		slog.Error("dataset unavailable", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	return err
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// view applies the request's filter parameters.
func (h *Handler) view(c echo.Context) (engine.View, engine.Selection, error) {
	sel, err := engine.ParseSelection(c.QueryParams(), reservedParams...)
	if err != nil {
		return engine.View{}, nil, err
	}
	v, err := h.src.Filter(sel)
	if err != nil {
		return engine.View{}, nil, err
	}
	return v, sel, nil
}

func (h *Handler) topN(c echo.Context) (int, error) {
	raw := c.QueryParam("top")
	if raw == "" {
		return h.settings.TopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewConfigError("top", "want a non-negative integer, got %q", raw)
	}
	return n, nil
}

func axis(c echo.Context, param string) string {
	if x := c.QueryParam(param); x != "" {
		return x
	}
	return models.ColCommodity
}

// --- HANDLERS ---

func (h *Handler) GetDashboard(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.settings.Page.Render(&buf); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// multi-select choices for every filter column
func (h *Handler) GetOptions(c echo.Context) error {
	ds, err := h.src.Dataset()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, engine.Options(ds))
}

func (h *Handler) GetVoyages(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return httpError(err)
	}

	total := v.Len()
	limit, offset := getPaginationParams(c, total)

	rows := make([]models.VoyageRow, 0)
	if offset < total {
		end := min(offset+limit, total)
		for i := offset; i < end; i++ {
			rows = append(rows, v.Voyage(i).Row())
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   rows,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetSummary(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return httpError(err)
	}
	n, err := h.topN(c)
	if err != nil {
		return httpError(err)
	}
	data, err := v.Summarize(n)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, data)
}

// top N groups by ?by=, remainder folded into "Other"
func (h *Handler) GetAggregate(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return httpError(err)
	}
	n, err := h.topN(c)
	if err != nil {
		return httpError(err)
	}
	items, err := v.Aggregate(axis(c, "by"), n)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMap(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return httpError(err)
	}
	data, err := mapview.Build(v).GeoJSON()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/geo+json", data)
}

// GetChart serves /api/charts/{bar,line,pie}.{png,svg}.
func (h *Handler) GetChart(c echo.Context) error {
	name := c.Param("name")
	format := strings.TrimPrefix(path.Ext(name), ".")
	kind := strings.TrimSuffix(name, path.Ext(name))

	contentType, err := charts.ContentType(format)
	if err != nil {
		return httpError(err)
	}
	v, _, err := h.view(c)
	if err != nil {
		return httpError(err)
	}
	x := axis(c, "x")

	var buf bytes.Buffer
	switch kind {
	case "bar":
		points, err := v.BarSeries(x, c.QueryParam("stat"))
		if err != nil {
			return httpError(err)
		}
		if err = charts.Bar(&buf, format, "", points); err != nil {
			return httpError(err)
		}
	case "line":
		points, err := v.LineSeries(x, h.settings.LineRows)
		if err != nil {
			return httpError(err)
		}
		if err = charts.Line(&buf, format, "", points); err != nil {
			return httpError(err)
		}
	case "pie":
		n, err := h.topN(c)
		if err != nil {
			return httpError(err)
		}
		items, err := v.Aggregate(x, n)
		if err != nil {
			return httpError(err)
		}
		if err = charts.Pie(&buf, format, "", items); err != nil {
			return httpError(err)
		}
	default:
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown chart %q", kind))
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) GetReport(c echo.Context) error {
	v, sel, err := h.view(c)
	if err != nil {
		return httpError(err)
	}
	n, err := h.topN(c)
	if err != nil {
		return httpError(err)
	}

	in, err := report.Build(v, sel, report.Options{
		Title:    h.settings.Page.Title,
		Axis:     axis(c, "x"),
		TopN:     n,
		LineRows: h.settings.LineRows,
	})
	if err != nil {
		return httpError(err)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, in); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="voyages.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// Reload drops the cached dataset and reads the file again.
func (h *Handler) Reload(c echo.Context) error {
	ds, err := h.src.Reload()
	if err != nil {
		return httpError(err)
	}
	slog.Info("dataset reloaded", "rows", ds.Len())
	return c.JSON(http.StatusOK, map[string]interface{}{"voyages": ds.Len()})
}
