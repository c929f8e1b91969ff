// Package config loads the CLI configuration (androidgen.yaml and ANDROIDGEN_* variables).
// Command settings such as sdk.root live in the settings store, not here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeySettingsDir = "settings_dir"
	KeyEngineRoot  = "engine_root"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyLogFile     = "log.file"
	KeyNoColor     = "no_color"
	KeyLang        = "lang"
)

// FileName is the configuration file name without extension
const FileName = "androidgen"

// EnvPrefix prefixes every environment override (ANDROIDGEN_ENGINE_ROOT, ANDROIDGEN_LOG_LEVEL)
const EnvPrefix = "ANDROIDGEN"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config is the decoded CLI configuration
type Config struct {
	SettingsDir string    `mapstructure:"settings_dir"`
	EngineRoot  string    `mapstructure:"engine_root"`
	Log         LogConfig `mapstructure:"log"`
	NoColor     bool      `mapstructure:"no_color"`
	Lang        string    `mapstructure:"lang"`
}

// LogConfig configures the global logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DefaultSettingsDir is where the global .command_settings file lives
func DefaultSettingsDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, FileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", FileName)
	}
	return "."
}

// SetDefaults registers the defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySettingsDir, DefaultSettingsDir())
	v.SetDefault(KeyEngineRoot, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyLang, "")
}

// Load reads configPath, or androidgen.yaml from the working directory and
// ~/.config/androidgen when configPath is empty. A missing file is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	SetDefaults(v)
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SaveTemplate writes a commented configuration file
func SaveTemplate(path string) error {
	templateContent := `# androidgen configuration file

# Directory holding the global .command_settings file
# settings_dir: ~/.config/androidgen

# Engine checkout; its Code/Tools/Android/ProjectBuilder templates override the built-in ones
engine_root: ""

log:
  # debug, info, warn, error
  level: info
  # text, compact, json
  format: text
  # Also append log records to this file
  file: ""

no_color: false

# en or zh; empty picks the system language
lang: ""
`
	return os.WriteFile(path, []byte(templateContent), 0644)
}
