// Package config layers defaults, a yaml config file, TZFE_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug                = "debug"
	ConfigCPUProfile           = "cpu-profile"
	ConfigHeuristicWeightsPath = "heuristic-weights-path"
	ConfigCprobThresh          = "cprob-thresh"
	ConfigCacheDepthLimit      = "cache-depth-limit"
	ConfigSearchDepthLimit     = "search-depth-limit"
	ConfigTTFractionOfMem      = "tt-fraction-of-mem"
	ConfigAutoplayGames        = "autoplay-games"
	ConfigAutoplayThreads      = "autoplay-threads"
	ConfigAutoplayLogPath      = "autoplay-log-path"
	ConfigSeedsPath            = "seeds-path"
	ConfigAutoplayDBPath       = "autoplay-db-path"

	configFileFlag    = "config-file"
	defaultConfigFile = "tzfe.yaml"
	envPrefix         = "TZFE"
)

// Config wraps a viper instance. Read values with the viper getters and the
// Config... key constants.
type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigHeuristicWeightsPath, "")
	v.SetDefault(ConfigCprobThresh, 0.0001)
	v.SetDefault(ConfigCacheDepthLimit, 6)
	v.SetDefault(ConfigSearchDepthLimit, 8)
	v.SetDefault(ConfigTTFractionOfMem, 0.0)
	v.SetDefault(ConfigAutoplayGames, 100)
	v.SetDefault(ConfigAutoplayThreads, 0)
	v.SetDefault(ConfigAutoplayLogPath, "/tmp/tzfe-autoplay.yaml")
	v.SetDefault(ConfigSeedsPath, "")
	v.SetDefault(ConfigAutoplayDBPath, "")
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tzfe", pflag.ContinueOnError)
	fs.String(configFileFlag, "", "path to a yaml config file")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.String(ConfigHeuristicWeightsPath, "", "yaml file with heuristic weights")
	fs.Float64(ConfigCprobThresh, 0.0001, "cumulative spawn probability below which the search stops")
	fs.Int(ConfigCacheDepthLimit, 6, "memoize positions shallower than this depth")
	fs.Int(ConfigSearchDepthLimit, 8, "maximum search depth")
	fs.Float64(ConfigTTFractionOfMem, 0, "cap each transposition table at this fraction of memory (0 = no cap)")
	fs.Int(ConfigAutoplayGames, 100, "number of games for autoplay")
	fs.Int(ConfigAutoplayThreads, 0, "games to play at once (0 = number of CPUs)")
	fs.String(ConfigAutoplayLogPath, "/tmp/tzfe-autoplay.yaml", "where autoplay writes its game log")
	fs.String(ConfigSeedsPath, "", "yaml seeds file (or an earlier autoplay log) for deterministic autoplay")
	fs.String(ConfigAutoplayDBPath, "", "sqlite file that collects autoplay results across batches")
	return fs
}

// Load parses args and merges in the environment and config file. Flags
// that were not set on the command line do not mask the other layers.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgFile, _ := fs.GetString(configFileFlag)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tzfe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no-config-file")
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("read-config-file")
	}

	c.Viper = v
	c.args = fs.Args()
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths makes relative file settings relative to basepath.
func (c *Config) AdjustRelativePaths(basepath string) {
	for _, key := range []string{ConfigHeuristicWeightsPath, ConfigSeedsPath, ConfigAutoplayDBPath} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(basepath, p))
	}
}

// Write saves the current settings to the config file that was read, or to
// tzfe.yaml in the working directory if none was.
func (c *Config) Write() error {
	if c.ConfigFileUsed() == "" {
		return c.WriteConfigAs(defaultConfigFile)
	}
	return c.WriteConfig()
}

// WriteTo saves the current settings to path.
func (c *Config) WriteTo(path string) error {
	return c.WriteConfigAs(path)
}
