package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetFloat64(ConfigCprobThresh), 0.0001)
	is.Equal(cfg.GetInt(ConfigCacheDepthLimit), 6)
	is.Equal(cfg.GetInt(ConfigSearchDepthLimit), 8)
	is.Equal(cfg.GetBool(ConfigDebug), false)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	t.Chdir(t.TempDir())
	cfg := &Config{}
	err := cfg.Load([]string{"--search-depth-limit", "4", "--debug", "autoplay"})
	is.NoErr(err)
	is.Equal(cfg.GetInt(ConfigSearchDepthLimit), 4)
	is.True(cfg.GetBool(ConfigDebug))
	// untouched flags fall through to the defaults
	is.Equal(cfg.GetInt(ConfigCacheDepthLimit), 6)
	is.Equal(cfg.Args(), []string{"autoplay"})
}

func TestLoadEnvAndFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	is.NoErr(os.WriteFile(path, []byte("cache-depth-limit: 3\nsearch-depth-limit: 5\n"), 0o644))
	t.Setenv("TZFE_SEARCH_DEPTH_LIMIT", "7")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config-file", path}))
	is.Equal(cfg.GetInt(ConfigCacheDepthLimit), 3)
	// the environment beats the file
	is.Equal(cfg.GetInt(ConfigSearchDepthLimit), 7)

	// and a flag beats the environment
	is.NoErr(cfg.Load([]string{"--config-file", path, "--search-depth-limit", "2"}))
	is.Equal(cfg.GetInt(ConfigSearchDepthLimit), 2)
}

func TestWriteRoundTrip(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := DefaultConfig()
	cfg.Set(ConfigSearchDepthLimit, 5)
	is.NoErr(cfg.Write())

	loaded := &Config{}
	is.NoErr(loaded.Load(nil))
	is.True(loaded.ConfigFileUsed() != "")
	is.Equal(loaded.GetInt(ConfigSearchDepthLimit), 5)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Set(ConfigSeedsPath, "seeds.txt")
	cfg.Set(ConfigHeuristicWeightsPath, "/abs/weights.yaml")
	cfg.AdjustRelativePaths("/opt/tzfe")
	is.Equal(cfg.GetString(ConfigSeedsPath), "/opt/tzfe/seeds.txt")
	is.Equal(cfg.GetString(ConfigHeuristicWeightsPath), "/abs/weights.yaml")
}
