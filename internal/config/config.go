package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"timeclock/internal/preferences"
)

// AppName names the per-user config and data directories.
const AppName = "timeclock"

const envPrefix = "TIMECLOCK_"

// Pane is one analysis window shown in the UI and reports.
type Pane struct {
	Name string `yaml:"name"`
	Days int    `yaml:"days"`
}

// Config captures the runtime settings. Values come from defaults, an
// optional YAML file, a .env file and finally TIMECLOCK_* variables.
type Config struct {
	// DataDir holds the database and log file unless they are set explicitly.
	DataDir string `yaml:"data_dir"`
	// DatabasePath is the sqlite file holding events.
	DatabasePath string `yaml:"database_path"`
	// LogFile receives structured logs.
	LogFile string `yaml:"log_file"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`
	// PreferencesPath is the YAML file holding countdown preferences.
	PreferencesPath string `yaml:"preferences_path"`
	// TickInterval is the display refresh period.
	TickInterval time.Duration `yaml:"tick_interval"`
	Panes        []Pane        `yaml:"panes"`
}

var defaultPanes = []Pane{
	{Name: "Today", Days: 1},
	{Name: "Last 7 Days", Days: 7},
	{Name: "Last 30 Days", Days: 30},
	{Name: "All Time", Days: -1},
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:         dataDir,
		DatabasePath:    filepath.Join(dataDir, "timeclock.db"),
		LogFile:         filepath.Join(dataDir, "timeclock.log"),
		LogLevel:        "INFO",
		PreferencesPath: filepath.Join(dataDir, preferences.FileName),
		TickInterval:    time.Second,
		Panes:           append([]Pane(nil), defaultPanes...),
	}
}

// DefaultDataDir resolves the per-user data directory.
func DefaultDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, AppName), nil
}

// Load layers the YAML file at path (ignored if missing or empty), the
// .env file in the working directory and the environment over Default.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	dataDir := strings.TrimSpace(os.Getenv(envPrefix + "DATA_DIR"))
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDataDir(); err != nil {
			return Config{}, err
		}
	}
	cfg := Default(dataDir)

	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fileCfg := *cfg
	fileCfg.Panes = nil
	if err := yaml.Unmarshal(rawData, &fileCfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fileCfg.DataDir != cfg.DataDir {
		// paths not set in the file follow the new data dir
		rebased := Default(fileCfg.DataDir)
		if fileCfg.DatabasePath == cfg.DatabasePath {
			fileCfg.DatabasePath = rebased.DatabasePath
		}
		if fileCfg.LogFile == cfg.LogFile {
			fileCfg.LogFile = rebased.LogFile
		}
		if fileCfg.PreferencesPath == cfg.PreferencesPath {
			fileCfg.PreferencesPath = rebased.PreferencesPath
		}
	}
	if len(fileCfg.Panes) == 0 {
		fileCfg.Panes = cfg.Panes
	}
	*cfg = fileCfg
	return nil
}

func applyEnv(cfg *Config) error {
	if v := lookup("DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := lookup("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := lookup("PREFERENCES_PATH"); v != "" {
		cfg.PreferencesPath = v
	}
	if v := lookup("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sTICK_INTERVAL: %w", envPrefix, err)
		}
		cfg.TickInterval = d
	}
	return nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("database path must not be empty")
	}
	for i, p := range c.Panes {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("pane %d: name must not be empty", i)
		}
		if p.Days == 0 || p.Days < -1 {
			return fmt.Errorf("pane %q: days must be positive or -1, got %d", p.Name, p.Days)
		}
	}
	return nil
}
