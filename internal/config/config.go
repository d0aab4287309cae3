package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"weekplan/internal/week"
)

const (
	AppDirName            = "weekplan"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "weekplan.db"
	DefaultLogName        = "weekplan.log"
)

// Themes the interface can render.
const (
	ThemeBlue = "blue"
	ThemeDark = "dark"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Help      string `toml:"help"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Left      string `toml:"left"`
	Right     string `toml:"right"`
	Focus     string `toml:"focus"`
	Pick      string `toml:"pick"`
	Trash     string `toml:"trash"`
	ToPool    string `toml:"to_pool"`
	Cancel    string `toml:"cancel"`
	Add       string `toml:"add"`
	Edit      string `toml:"edit"`
	Toggle    string `toml:"toggle"`
	Duplicate string `toml:"duplicate"`
	PrevWeek  string `toml:"prev_week"`
	NextWeek  string `toml:"next_week"`
	ThisWeek  string `toml:"this_week"`
	Organize  string `toml:"organize"`
	ResetWeek string `toml:"reset_week"`
	Theme     string `toml:"theme"`
}

type Labels struct {
	Goal    string `toml:"goal"`
	Focus   string `toml:"focus"`
	Work    string `toml:"work"`
	Leisure string `toml:"leisure"`
	Basics  string `toml:"basics"`
}

type PlannerConfig struct {
	Command        string   `toml:"command" env:"WEEKPLAN_PLANNER_COMMAND"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds" env:"WEEKPLAN_PLANNER_TIMEOUT"`
}

type Config struct {
	DBPath         string        `toml:"db_path" env:"WEEKPLAN_DB_PATH"`
	LogPath        string        `toml:"log_path" env:"WEEKPLAN_LOG_PATH"`
	Theme          string        `toml:"theme" env:"WEEKPLAN_THEME"`
	DailyCapacity  int           `toml:"daily_capacity" env:"WEEKPLAN_DAILY_CAPACITY"`
	SaveDebounceMS int           `toml:"save_debounce_ms" env:"WEEKPLAN_SAVE_DEBOUNCE_MS"`
	Planner        PlannerConfig `toml:"planner"`
	Labels         Labels        `toml:"labels"`
	Keys           Keymap        `toml:"keys"`
}

// ResolveConfigPath honours WEEKPLAN_CONFIG, then the user config dir.
func ResolveConfigPath() string {
	var loc struct {
		Path string `env:"WEEKPLAN_CONFIG"`
	}
	if err := ParseEnv(&loc); err == nil && loc.Path != "" {
		return loc.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppDirName, DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there on first launch.
// Environment variables override the file. Relative paths in the file are
// resolved against its directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.DailyCapacity == 0 {
		c.DailyCapacity = def.DailyCapacity
	}
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&c.Labels.Goal, def.Labels.Goal)
	fill(&c.Labels.Focus, def.Labels.Focus)
	fill(&c.Labels.Work, def.Labels.Work)
	fill(&c.Labels.Leisure, def.Labels.Leisure)
	fill(&c.Labels.Basics, def.Labels.Basics)
}

func (c *Config) resolvePaths(dir string) {
	if !filepath.IsAbs(c.DBPath) && !strings.HasPrefix(c.DBPath, "file:") {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if !filepath.IsAbs(c.LogPath) {
		c.LogPath = filepath.Join(dir, c.LogPath)
	}
}

func (c Config) Validate() error {
	switch c.Theme {
	case ThemeBlue, ThemeDark:
	default:
		return fmt.Errorf("invalid config: theme must be %q or %q, got %q", ThemeBlue, ThemeDark, c.Theme)
	}
	if c.DailyCapacity <= 0 {
		return fmt.Errorf("invalid config: daily_capacity must be positive, got %d", c.DailyCapacity)
	}
	if c.SaveDebounceMS < 0 {
		return fmt.Errorf("invalid config: save_debounce_ms must not be negative, got %d", c.SaveDebounceMS)
	}
	if c.Planner.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid config: planner.timeout_seconds must not be negative, got %d", c.Planner.TimeoutSeconds)
	}
	return c.Keys.validate()
}

func (c Config) SaveDelay() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

func (c Config) PlannerTimeout() time.Duration {
	return time.Duration(c.Planner.TimeoutSeconds) * time.Second
}

// Label is the display name of a category.
func (l Labels) Label(c week.Category) string {
	switch c {
	case week.Goal:
		return l.Goal
	case week.Focus:
		return l.Focus
	case week.Work:
		return l.Work
	case week.Leisure:
		return l.Leisure
	case week.Basics:
		return l.Basics
	default:
		return string(c)
	}
}

// validate rejects empty bindings and keys bound to two actions.
func (k Keymap) validate() error {
	bindings := []struct{ name, key string }{
		{"quit", k.Quit}, {"help", k.Help},
		{"up", k.Up}, {"down", k.Down}, {"left", k.Left}, {"right", k.Right},
		{"focus", k.Focus}, {"pick", k.Pick}, {"trash", k.Trash}, {"to_pool", k.ToPool},
		{"cancel", k.Cancel}, {"add", k.Add}, {"edit", k.Edit}, {"toggle", k.Toggle},
		{"duplicate", k.Duplicate}, {"prev_week", k.PrevWeek}, {"next_week", k.NextWeek},
		{"this_week", k.ThisWeek}, {"organize", k.Organize}, {"reset_week", k.ResetWeek},
		{"theme", k.Theme},
	}
	seen := make(map[string]string, len(bindings))
	for _, b := range bindings {
		if b.key == "" {
			return fmt.Errorf("invalid config: keys.%s is empty", b.name)
		}
		if prev, ok := seen[b.key]; ok {
			return fmt.Errorf("invalid config: key %q bound to both %s and %s", b.key, prev, b.name)
		}
		seen[b.key] = b.name
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DBPath:         DefaultDBName,
		LogPath:        DefaultLogName,
		Theme:          ThemeBlue,
		DailyCapacity:  480,
		SaveDebounceMS: 500,
		Planner: PlannerConfig{
			TimeoutSeconds: 60,
		},
		Labels: Labels{
			Goal:    "Goal",
			Focus:   "Focus",
			Work:    "Work",
			Leisure: "Leisure",
			Basics:  "Basics",
		},
		Keys: Keymap{
			Quit:      "q",
			Help:      "?",
			Up:        "k",
			Down:      "j",
			Left:      "h",
			Right:     "l",
			Focus:     "tab",
			Pick:      "enter",
			Trash:     "x",
			ToPool:    "p",
			Cancel:    "esc",
			Add:       "a",
			Edit:      "e",
			Toggle:    " ",
			Duplicate: "y",
			PrevWeek:  "[",
			NextWeek:  "]",
			ThisWeek:  "t",
			Organize:  "o",
			ResetWeek: "R",
			Theme:     "T",
		},
	}
}
