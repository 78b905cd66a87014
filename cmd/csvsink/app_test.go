package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvsink/internal/config"
	"csvsink/internal/logger"
	"csvsink/pkg/errors"
)

func newTestApp(t *testing.T, in string) (*App, *bytes.Buffer, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		Delimiter:         ",",
		QuoteChar:         `"`,
		DestinationPath:   t.TempDir(),
		DisableCollection: true,
		LogLevel:          "error",
	}

	app := NewApp(cfg, logger.NopLogger())
	require.NoError(t, app.Initialize())

	out := &bytes.Buffer{}
	app.input = strings.NewReader(in)
	app.output = out
	return app, out, cfg
}

func TestRunEmitsCheckpointLine(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"SCHEMA","stream":"users","schema":{"type":"object"},"key_properties":[]}`,
		`{"type":"RECORD","stream":"users","record":{"id":1}}`,
		`{"type":"STATE","value":{"bookmark":42}}`,
	}, "\n") + "\n"

	app, out, cfg := newTestApp(t, in)
	require.NoError(t, app.Run())

	assert.Equal(t, "{\"bookmark\":42}\n", out.String())

	files, err := filepath.Glob(filepath.Join(cfg.DestinationPath, "users-*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRunWithoutStateEmitsNothing(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"SCHEMA","stream":"users","schema":{"type":"object"},"key_properties":[]}`,
		`{"type":"RECORD","stream":"users","record":{"id":1}}`,
	}, "\n") + "\n"

	app, out, _ := newTestApp(t, in)
	require.NoError(t, app.Run())

	assert.Empty(t, out.String())
}

func TestRunFatalErrorEmitsNoCheckpoint(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"STATE","value":{"bookmark":1}}`,
		`{"type":"RECORD","stream":"users","record":{"id":1}}`,
	}, "\n") + "\n"

	app, out, _ := newTestApp(t, in)
	err := app.Run()
	require.Error(t, err)
	assert.True(t, errors.IsUnknownStream(err))
	assert.Empty(t, out.String())
}
