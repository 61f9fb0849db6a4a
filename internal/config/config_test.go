package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eventmodel/internal/testutils"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"eventmodel.toml": `
model_dir = "models"
loader = "file"

[export]
format = "yaml"
sinks = ["file", "redis"]

[redis]
addr = "cache:6379"
ttl = "90s"
`,
		"eventmodel.yaml": `
model_dir: models
export:
  sinks: [sqlite]
redis:
  ttl: 2m
http:
  port: 9000
`,
		"eventmodel.json": `{"model_dir": "models", "sqlite": {"path": "out.db"}, "debug": true}`,
	})

	t.Run("TOML", func(t *testing.T) {
		cfg, err := Load(dir + "/eventmodel.toml")
		require.NoError(t, err)
		assert.Equal(t, "models", cfg.ModelDir)
		assert.Equal(t, LoaderFile, cfg.Loader)
		assert.Equal(t, "yaml", cfg.Export.Format)
		assert.Equal(t, []string{"file", "redis"}, cfg.Export.Sinks)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr)
		assert.Equal(t, 90*time.Second, cfg.Redis.TTL.Duration)
		assert.Equal(t, ".eventmodel/slices", cfg.Export.Dir, "unset keys keep defaults")
	})

	t.Run("YAML", func(t *testing.T) {
		cfg, err := Load(dir + "/eventmodel.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"sqlite"}, cfg.Export.Sinks)
		assert.Equal(t, 2*time.Minute, cfg.Redis.TTL.Duration)
		assert.Equal(t, 9000, cfg.HTTP.Port)
	})

	t.Run("JSON", func(t *testing.T) {
		cfg, err := Load(dir + "/eventmodel.json")
		require.NoError(t, err)
		assert.Equal(t, "out.db", cfg.SQLite.Path)
		assert.True(t, cfg.Debug)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"eventmodel.toml": "model_dir = \"from-file\"\n",
	})

	t.Setenv("EVENTMODEL_MODEL_DIR", "from-env")
	t.Setenv("EVENTMODEL_EXPORT_SINKS", "file,sqlite")
	t.Setenv("EVENTMODEL_REDIS_TTL", "5m")
	t.Setenv("EVENTMODEL_HTTP_PORT", "7070")

	cfg, err := Load(dir + "/eventmodel.toml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ModelDir)
	assert.Equal(t, []string{"file", "sqlite"}, cfg.Export.Sinks)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL.Duration)
	assert.Equal(t, 7070, cfg.HTTP.Port)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"bad.toml":       "model_dir = [",
		"eventmodel.ini": "model_dir=x",
		"invalid.yaml":   "loader: git\nexport:\n  sinks: [s3]\n",
		"bad-ttl.yaml":   "redis:\n  ttl: soon\n",
	})

	_, err := Load(dir + "/bad.toml")
	assert.ErrorContains(t, err, "decode TOML")

	_, err = Load(dir + "/eventmodel.ini")
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(dir + "/missing.toml")
	assert.ErrorContains(t, err, "read config")

	_, err = Load(dir + "/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loader must be`)
	assert.Contains(t, err.Error(), `unknown export sink "s3"`)

	_, err = Load(dir + "/bad-ttl.yaml")
	assert.ErrorContains(t, err, "invalid duration")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	testutils.WriteFiles(t, dir, map[string]string{
		"eventmodel.json": "{}",
		"eventmodel.yaml": "{}",
	})
	assert.Equal(t, dir+"/eventmodel.yaml", Find(dir))
}
