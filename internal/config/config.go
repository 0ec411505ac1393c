package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"agendacal/internal/ics"
	"agendacal/internal/layout"
	"agendacal/internal/model"
)

const (
	defaultTimezone    = "Europe/Berlin"
	defaultLocale      = "de"
	defaultHorizonDays = 14
	defaultOutputDir   = "./out"
	defaultSchedule    = "0 6 * * *"
	defaultLogLevel    = "info"
	defaultTimeout     = 2 * time.Minute
)

// FontsConfig points at TrueType files used instead of the built-in Go
// fonts. Empty paths keep the built-ins.
type FontsConfig struct {
	Regular string `yaml:"regular,omitempty" json:"regular,omitempty"`
	Bold    string `yaml:"bold,omitempty" json:"bold,omitempty"`
}

// PreviewConfig controls the optional PNG written next to the PDF.
type PreviewConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Scale is pixels per point.
	Scale float64 `yaml:"scale" json:"scale"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone events are displayed in (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale is a BCP 47 tag selecting weekday and date formats.
	Locale string `yaml:"locale" json:"locale"`

	// HorizonDays is how many days from today ICS events are expanded for.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// Sources are local ICS files. EventsFile, if set, is a JSON event list
	// read in addition to them.
	Sources    []ics.Source `yaml:"sources" json:"sources"`
	EventsFile string       `yaml:"events_file,omitempty" json:"events_file,omitempty"`

	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Schedule is a standard five-field cron expression.
	Schedule string `yaml:"schedule" json:"schedule"`

	// Timeout bounds a single render job.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Page   layout.PageSize     `yaml:"page" json:"page"`
	Layout layout.Config       `yaml:"layout" json:"layout"`
	Colors model.ColorSettings `yaml:"colors" json:"colors"`
	Fonts  FontsConfig         `yaml:"fonts" json:"fonts"`

	BackgroundImage string        `yaml:"background_image,omitempty" json:"background_image,omitempty"`
	Preview         PreviewConfig `yaml:"preview" json:"preview"`

	// Notes maps event IDs to note text shown instead of the event's own
	// information.
	Notes map[string]string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:    defaultTimezone,
		Locale:      defaultLocale,
		HorizonDays: defaultHorizonDays,
		Sources:     []ics.Source{},
		OutputDir:   defaultOutputDir,
		Schedule:    defaultSchedule,
		Timeout:     defaultTimeout,
		LogLevel:    defaultLogLevel,
		Page:        layout.DefaultPageSize,
		Layout:      layout.DefaultConfig(),
		Colors:      model.DefaultColorSettings(),
		Preview:     PreviewConfig{Scale: 1},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.Sources == nil {
		c.Sources = []ics.Source{}
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		c.Page = layout.DefaultPageSize
	}
	if c.Layout == (layout.Config{}) {
		c.Layout = layout.DefaultConfig()
	}

	def := model.DefaultColorSettings()
	if c.Colors.Background == "" {
		c.Colors.Background = def.Background
	}
	if c.Colors.Accent == "" {
		c.Colors.Accent = def.Accent
	}
	if c.Colors.Text == "" {
		c.Colors.Text = def.Text
	}
	if c.Colors.Title == "" {
		c.Colors.Title = def.Title
	}
	if c.Preview.Scale <= 0 {
		c.Preview.Scale = 1
	}
	for i := range c.Sources {
		if c.Sources[i].ID == "" {
			c.Sources[i].ID = fmt.Sprint(i + 1)
		}
	}
}

// Validate reports settings that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule %q: %w", c.Schedule, err))
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := model.ParseColorScheme(c.Colors); err != nil {
		errs = append(errs, err)
	}
	if len(c.Sources) == 0 && c.EventsFile == "" {
		errs = append(errs, errors.New("no sources or events_file configured"))
	}
	seen := make(map[string]bool)
	for _, s := range c.Sources {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate source id %q", s.ID))
		}
		seen[s.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Note returns the configured note for an event ID.
func (c *Config) Note(id string) (string, bool) {
	n, ok := c.Notes[id]
	if !ok || strings.TrimSpace(n) == "" {
		return "", false
	}
	return n, true
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is decoded over the defaults, so keys missing from
//     the file keep their default values, and the result is normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename. The parent
// directory is created with 0700 and the file ends up with 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
