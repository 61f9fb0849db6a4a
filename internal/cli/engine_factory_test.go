package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eventmodel/internal/config"
	"github.com/aretw0/eventmodel/internal/logging"
	"github.com/aretw0/eventmodel/internal/testutils"
	"github.com/aretw0/eventmodel/pkg/adapters/file"
)

func TestCreateEngine_FileLoader(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"orders.yaml": "timeline:\n  - {type: command, name: PlaceOrder, tick: 1}\n",
	})

	cfg := config.Default()
	cfg.ModelDir = dir
	cfg.Loader = config.LoaderFile

	eng, err := CreateEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &file.Loader{}, eng.Loader())

	view, err := eng.Build(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, view.Slices, 1)
	assert.Equal(t, "PlaceOrder", view.Slices[0].Name)
}

func TestCreateSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Export.Dir = filepath.Join(dir, "out")
	cfg.SQLite.Path = filepath.Join(dir, "slices.db")

	t.Run("File And SQLite", func(t *testing.T) {
		sinks, err := CreateSinks(cfg, []string{"file", "sqlite"})
		require.NoError(t, err)
		defer sinks.Close()

		assert.Equal(t, "file+sqlite", sinks.Name())

		eng, err := CreateEngine(&config.Config{ModelDir: dir, Loader: config.LoaderFile}, logging.NewNop())
		require.NoError(t, err)
		testutils.WriteFiles(t, dir, map[string]string{
			"orders.json": `{"timeline": [{"type": "command", "name": "PlaceOrder", "tick": 1}]}`,
		})
		view, err := eng.Build(context.Background(), "orders")
		require.NoError(t, err)

		require.NoError(t, sinks.Export(context.Background(), "orders", view))
		_, err = os.Stat(filepath.Join(dir, "out", "orders.slices.json"))
		assert.NoError(t, err)
	})

	t.Run("Unknown Sink", func(t *testing.T) {
		_, err := CreateSinks(cfg, []string{"file", "s3"})
		assert.ErrorContains(t, err, `unknown export sink "s3"`)
	})

	t.Run("Bad Format", func(t *testing.T) {
		bad := *cfg
		bad.Export.Format = "xml"
		_, err := CreateSinks(&bad, []string{"file"})
		assert.Error(t, err)
	})
}

func TestRenderSlices_Plain(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"orders.json": `{"timeline": [{"type": "command", "name": "PlaceOrder", "tick": 1}]}`,
	})
	eng, err := CreateEngine(&config.Config{ModelDir: dir, Loader: config.LoaderFile}, logging.NewNop())
	require.NoError(t, err)
	view, err := eng.Build(context.Background(), "orders")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderSlices(&buf, view, false))
	assert.Contains(t, buf.String(), "## Command: PlaceOrder")
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "Watching '%s'.", "models")
	assert.Equal(t, ">>> Watching 'models'.\n", buf.String())
}
