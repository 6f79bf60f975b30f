package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabimport/internal/importer"
)

// Global configuration structure.
type Global struct {
	// Import defaults; command flags and query parameters override them.
	Separator            string `mapstructure:"separator" yaml:"separator"`
	Whitespace           string `mapstructure:"whitespace" yaml:"whitespace"`
	IgnoredLines         int    `mapstructure:"ignored_lines" yaml:"ignored_lines"`
	FirstRowNamesColumns bool   `mapstructure:"first_row_names_columns" yaml:"first_row_names_columns"`
	ConvertToNumeric     bool   `mapstructure:"convert_to_numeric" yaml:"convert_to_numeric"`
	NumericLocale        string `mapstructure:"numeric_locale" yaml:"numeric_locale"`
	StripBOM             bool   `mapstructure:"strip_bom" yaml:"strip_bom"`
	Workers              int    `mapstructure:"workers" yaml:"workers"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP service
	ServerAddr     string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"separator", "whitespace", "ignored_lines", "first_row_names_columns",
	"convert_to_numeric", "numeric_locale", "strip_bom", "workers",
	"log_level", "log_format", "server_addr", "max_upload_bytes",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabimport"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabimport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABIMPORT")
	v.AutomaticEnv()

	def := importer.DefaultOptions()
	v.SetDefault("separator", "tab")
	v.SetDefault("whitespace", def.Whitespace.String())
	v.SetDefault("ignored_lines", def.IgnoredLines)
	v.SetDefault("first_row_names_columns", def.FirstRowNamesColumns)
	v.SetDefault("convert_to_numeric", def.ConvertToNumeric)
	v.SetDefault("numeric_locale", def.NumericLocale)
	v.SetDefault("strip_bom", def.StripBOM)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("max_upload_bytes", 32<<20)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// ImportOptions maps the import defaults to importer.Options.
func (c *Global) ImportOptions() (importer.Options, error) {
	ws, err := importer.ParseWhitespace(c.Whitespace)
	if err != nil {
		return importer.Options{}, err
	}
	opt := importer.Options{
		Separator:            importer.ParseSeparator(c.Separator),
		Whitespace:           ws,
		IgnoredLines:         c.IgnoredLines,
		FirstRowNamesColumns: c.FirstRowNamesColumns,
		ConvertToNumeric:     c.ConvertToNumeric,
		NumericLocale:        c.NumericLocale,
		StripBOM:             c.StripBOM,
		Workers:              c.Workers,
	}
	if err := opt.Validate(); err != nil {
		return importer.Options{}, err
	}
	return opt, nil
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "separator":
		return c.Separator, nil
	case "whitespace":
		return c.Whitespace, nil
	case "ignored_lines":
		return fmt.Sprint(c.IgnoredLines), nil
	case "first_row_names_columns":
		return fmt.Sprint(c.FirstRowNamesColumns), nil
	case "convert_to_numeric":
		return fmt.Sprint(c.ConvertToNumeric), nil
	case "numeric_locale":
		return c.NumericLocale, nil
	case "strip_bom":
		return fmt.Sprint(c.StripBOM), nil
	case "workers":
		return fmt.Sprint(c.Workers), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "server_addr":
		return c.ServerAddr, nil
	case "max_upload_bytes":
		return fmt.Sprint(c.MaxUploadBytes), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "separator":
		if val == "" {
			return importer.ErrEmptySeparator
		}
		c.Separator = val
	case "whitespace":
		ws, err := importer.ParseWhitespace(val)
		if err != nil {
			return err
		}
		c.Whitespace = ws.String()
	case "ignored_lines":
		return setInt(&c.IgnoredLines, key, val)
	case "first_row_names_columns":
		return setBool(&c.FirstRowNamesColumns, key, val)
	case "convert_to_numeric":
		return setBool(&c.ConvertToNumeric, key, val)
	case "numeric_locale":
		c.NumericLocale = val
	case "strip_bom":
		return setBool(&c.StripBOM, key, val)
	case "workers":
		return setInt(&c.Workers, key, val)
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_bytes":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid size for max_upload_bytes: %v", val)
		}
		c.MaxUploadBytes = n
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, val string) error {
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, val string) error {
	switch strings.ToLower(val) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0":
		*dst = false
	default:
		return fmt.Errorf("invalid bool for %s: %v", key, val)
	}
	return nil
}
