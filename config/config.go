package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. PIXELRULER_IMAGE_PATH.
const EnvPrefix = "PIXELRULER"

// Photo sources.
const (
	SourceFile   = "file"
	SourceScreen = "screen"
)

// Overflow policies applied once a measurement has been reported.
const (
	OverflowReset  = "reset"
	OverflowReject = "reject"
)

// Config holds runtime configuration for the ruler.
// Fields may be loaded from a JSON file and overridden by environment
// variables and command-line flags.
type Config struct {
	Debug    bool   `json:"debug" mapstructure:"debug"`
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Photo input
	ImagePath    string  `json:"image_path" mapstructure:"image_path"`
	Source       string  `json:"source" mapstructure:"source"`
	DisplayScale float64 `json:"display_scale" mapstructure:"display_scale"`

	// Markers drawn at clicked points
	MarkerRadius int    `json:"marker_radius" mapstructure:"marker_radius"`
	MarkerColor  string `json:"marker_color" mapstructure:"marker_color"`
	LineColor    string `json:"line_color" mapstructure:"line_color"`

	Dark        bool   `json:"dark" mapstructure:"dark"`
	Locale      string `json:"locale" mapstructure:"locale"`
	Overflow    string `json:"overflow" mapstructure:"overflow"`
	WindowTitle string `json:"window_title" mapstructure:"window_title"`
	HistorySize int    `json:"history_size" mapstructure:"history_size"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:        false,
		LogLevel:     "info",
		ImagePath:    "Rov photo/t1.png",
		Source:       SourceFile,
		DisplayScale: 0.5,
		MarkerRadius: 5,
		MarkerColor:  "#ff0000",
		LineColor:    "#ffd400",
		Locale:       "en",
		Overflow:     OverflowReset,
		WindowTitle:  "Original Image",
		HistorySize:  5,
	}
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "pixel-ruler", "config.json")
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.DisplayScale <= 0 || c.DisplayScale > 1 {
		c.DisplayScale = 0.5
	}
	if c.MarkerRadius <= 0 {
		c.MarkerRadius = 5
	}
	if _, err := colorful.Hex(c.MarkerColor); err != nil {
		c.MarkerColor = "#ff0000"
	}
	if _, err := colorful.Hex(c.LineColor); err != nil {
		c.LineColor = "#ffd400"
	}
	switch strings.ToLower(c.Source) {
	case SourceFile, SourceScreen:
		c.Source = strings.ToLower(c.Source)
	default:
		c.Source = SourceFile
	}
	switch strings.ToLower(c.Overflow) {
	case OverflowReset, OverflowReject:
		c.Overflow = strings.ToLower(c.Overflow)
	default:
		c.Overflow = OverflowReset
	}
	if strings.TrimSpace(c.Locale) == "" {
		c.Locale = "en"
	}
	if c.WindowTitle == "" {
		c.WindowTitle = "Original Image"
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Source == SourceFile && strings.TrimSpace(c.ImagePath) == "" {
		return errors.New("image path is required")
	}
	return nil
}

// RegisterFlags declares the command-line overrides on flags. Flag names map to
// config keys inside Load.
func RegisterFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()
	flags.String("config", DefaultPath(), "path to the JSON config file")
	flags.StringP("image", "i", d.ImagePath, "photo to measure")
	flags.String("source", d.Source, "photo source: file or screen")
	flags.Float64("scale", d.DisplayScale, "display scale factor (0,1]")
	flags.String("locale", d.Locale, "message locale, e.g. en or zh-Hant")
	flags.String("overflow", d.Overflow, "after a measurement: reset or reject extra clicks")
	flags.Bool("dark", d.Dark, "use the dark palette")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.Bool("debug", d.Debug, "enable debug logging")
}

var flagKeys = map[string]string{
	"image":     "image_path",
	"source":    "source",
	"scale":     "display_scale",
	"locale":    "locale",
	"overflow":  "overflow",
	"dark":      "dark",
	"log-level": "log_level",
	"debug":     "debug",
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig() with environment and flag overrides applied.
// flags may be nil. On decode error it returns defaults with the error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, err
				}
			}
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return cfg, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("debug", c.Debug)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("image_path", c.ImagePath)
	v.SetDefault("source", c.Source)
	v.SetDefault("display_scale", c.DisplayScale)
	v.SetDefault("marker_radius", c.MarkerRadius)
	v.SetDefault("marker_color", c.MarkerColor)
	v.SetDefault("line_color", c.LineColor)
	v.SetDefault("dark", c.Dark)
	v.SetDefault("locale", c.Locale)
	v.SetDefault("overflow", c.Overflow)
	v.SetDefault("window_title", c.WindowTitle)
	v.SetDefault("history_size", c.HistorySize)
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
