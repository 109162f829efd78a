package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/e-imamura/TMX-Editor/config"
	"github.com/e-imamura/TMX-Editor/datastore"
	"github.com/e-imamura/TMX-Editor/tmx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ds, err := datastore.Connect(config.DbConfig{Driver: config.DbDriverSqlite3, File: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer ds.Close()
	_, err = ds.MigrateUp()
	require.NoError(t, err)

	doc, err := tmx.Load([]byte(`<tmx version="1.4"><body><tu tuid="a"><tuv xml:lang="en"><seg>One</seg></tuv></tu></body></tmx>`))
	require.NoError(t, err)
	require.NoError(t, ds.SaveDocument("one", doc))

	out := filepath.Join(t.TempDir(), "out")
	count, err := Run(ds, out, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	written, err := os.ReadFile(filepath.Join(out, "one.tmx"))
	require.NoError(t, err)
	assert.Contains(t, string(written), `<tu tuid="a" id="1">`)

	_, err = Run(ds, out, true)
	require.NoError(t, err)
	written, err = os.ReadFile(filepath.Join(out, "one.tmx"))
	require.NoError(t, err)
	assert.NotContains(t, strings.TrimPrefix(string(written), tmx.Prolog), "=")
}
