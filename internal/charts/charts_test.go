package charts

import (
	"bytes"
	"testing"

	"cargodash/internal/common"
	"cargodash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var points = []models.SeriesPoint{
	{Label: "wheat", Value: 30000},
	{Label: "barley", Value: 12000},
	{Label: "soybeans", Value: 65000},
}

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bar(&buf, FormatPNG, "Intake by commodity", points))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestBarSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bar(&buf, FormatPNG, "", points[:1]))
	assert.NotZero(t, buf.Len())
}

func TestLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Line(&buf, FormatSVG, "First voyages", points))
	assert.Contains(t, buf.String(), "<svg")

	buf.Reset()
	require.NoError(t, Line(&buf, FormatPNG, "", points[:1]))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestPie(t *testing.T) {
	items := []models.AggregateItem{
		{Label: "Alexandria", Intake: 55000, Voyages: 2},
		{Label: "Jeddah", Intake: 12000, Voyages: 1},
		{Label: models.OtherLabel, Intake: 3000, Voyages: 4, Other: true},
	}

	var buf bytes.Buffer
	require.NoError(t, Pie(&buf, "", "Share by discharge port", items))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestNoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Bar(&buf, FormatPNG, "", nil), ErrNoData)
	assert.ErrorIs(t, Line(&buf, FormatPNG, "", nil), ErrNoData)
	assert.ErrorIs(t, Pie(&buf, FormatPNG, "", []models.AggregateItem{{Label: "x"}}), ErrNoData)
}

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Bar(&buf, "gif", "", points), common.ErrConfig)

	ct, err := ContentType("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", ct)

	_, err = ContentType("jpeg")
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestValueRange(t *testing.T) {
	r := valueRange([]float64{0, 0})
	assert.Greater(t, r.Max, r.Min)

	r = valueRange([]float64{-5, 10})
	assert.Less(t, r.Min, -5.0)
	assert.Greater(t, r.Max, 10.0)
}
