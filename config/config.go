package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artemijrodionov/sim8086/disasm"
	"github.com/artemijrodionov/sim8086/output"
)

const EnvPrefix = "SIM8086"

type Decode struct {
	OnUnknown  string `mapstructure:"on_unknown"`
	Trailing   string `mapstructure:"trailing"`
	StrictMode bool   `mapstructure:"strict_mode"`
	Workers    int    `mapstructure:"workers"`
}

type Output struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
	Bits16 bool   `mapstructure:"bits16"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type Config struct {
	Decode Decode `mapstructure:"decode"`
	Output Output `mapstructure:"output"`
	Log    Log    `mapstructure:"log"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"on-unknown":  "decode.on_unknown",
	"trailing":    "decode.trailing",
	"strict-mode": "decode.strict_mode",
	"workers":     "decode.workers",
	"format":      "output.format",
	"color":       "output.color",
	"bits16":      "output.bits16",
	"log-level":   "log.level",
	"log-json":    "log.json",
	"log-file":    "log.file",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("decode.on_unknown", string(disasm.SkipUnknown))
	v.SetDefault("decode.trailing", string(disasm.WarnTrailing))
	v.SetDefault("decode.strict_mode", false)
	v.SetDefault("decode.workers", 1)
	v.SetDefault("output.format", string(output.FormatText))
	v.SetDefault("output.color", string(output.ColorAuto))
	v.SetDefault("output.bits16", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// AddFlags registers the flags Load understands on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("on-unknown", string(disasm.SkipUnknown), "what to do with an unknown opcode: skip or abort")
	fs.String("trailing", string(disasm.WarnTrailing), "what to do with a trailing odd byte: warn or reject")
	fs.Bool("strict-mode", false, "treat memory addressing modes as errors")
	fs.Int("workers", 1, "decode with this many goroutines")
	fs.String("format", string(output.FormatText), "output format: text, listing or yaml")
	fs.String("color", string(output.ColorAuto), "color listing output: auto, always or never")
	fs.Bool("bits16", false, "start text output with a 'bits 16' directive")
	fs.String("log-level", "warn", "log level: trace, debug, info, warn or error")
	fs.Bool("log-json", false, "log in JSON")
	fs.String("log-file", "", "write logs to this file instead of stderr")
}

// Load reads configuration in increasing priority: defaults, the config
// file, SIM8086_* environment variables, then flags that were set. path may
// be empty, in which case sim8086.yaml is looked up in . and
// $HOME/.sim8086 and may be missing.
func Load(v *viper.Viper, path string, fs *pflag.FlagSet) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sim8086")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sim8086")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func oneOf[T ~string](key, value string, allowed ...T) error {
	if slices.Contains(allowed, T(value)) {
		return nil
	}
	return fmt.Errorf("%s: %q is not one of %v", key, value, allowed)
}

func (c Config) Validate() error {
	var workers error
	if c.Decode.Workers < 1 {
		workers = fmt.Errorf("decode.workers: must be at least 1, got %d", c.Decode.Workers)
	}
	var level error
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		level = fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	return errors.Join(
		oneOf("decode.on_unknown", c.Decode.OnUnknown, disasm.SkipUnknown, disasm.AbortUnknown),
		oneOf("decode.trailing", c.Decode.Trailing, disasm.WarnTrailing, disasm.RejectTrailing),
		workers,
		oneOf("output.format", c.Output.Format, output.Formats...),
		oneOf("output.color", c.Output.Color, output.ColorAuto, output.ColorAlways, output.ColorNever),
		level,
	)
}

func (c Config) DisasmOptions() disasm.Options {
	return disasm.Options{
		OnUnknown:  disasm.UnknownPolicy(c.Decode.OnUnknown),
		Trailing:   disasm.TrailingPolicy(c.Decode.Trailing),
		StrictMode: c.Decode.StrictMode,
		Workers:    c.Decode.Workers,
	}
}

func (c Config) OutputOptions(source string) output.Options {
	return output.Options{
		Bits16: c.Output.Bits16,
		Color:  output.ColorMode(c.Output.Color),
		Source: source,
	}
}
