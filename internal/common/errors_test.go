package common

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadError(t *testing.T) {
	t.Run("matches sentinel and cause", func(t *testing.T) {
		err := error(&LoadError{Path: "geo_data.xlsx", Err: fs.ErrNotExist})

		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.NotErrorIs(t, err, ErrConfig)
	})

	t.Run("lists missing columns", func(t *testing.T) {
		err := &LoadError{Path: "geo_data.xlsx", Sheet: "data", Missing: []string{"lat_to", "lon_to"}}

		assert.Equal(t, `load geo_data.xlsx (sheet "data"): missing columns "lat_to", "lon_to"`, err.Error())
	})

	t.Run("reports bad cell", func(t *testing.T) {
		err := &LoadError{Path: "v.csv", Row: 4, Column: "lat_from", Err: errors.New("bad number")}

		assert.Equal(t, `load v.csv: row 4 column "lat_from": bad number`, err.Error())
	})
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("vessel", "unknown filter column")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "vessel", cfgErr.Key)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, "vessel: unknown filter column", err.Error())
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	require.NoError(t, setupLogger(&buf, "debug", "json"))
	slog.Debug("loaded", "rows", 3)
	assert.Contains(t, buf.String(), `"rows":3`)

	assert.ErrorIs(t, setupLogger(&buf, "loud", "json"), ErrConfig)
	assert.ErrorIs(t, setupLogger(&buf, "info", "xml"), ErrConfig)
}
