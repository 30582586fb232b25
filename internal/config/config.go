package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const (
	defaultRefreshIntervalSeconds = 30
	defaultLookbackHours          = 24
	defaultRequestTimeoutSeconds  = 15
)

type Config struct {
	// SessionToken is the manually configured credential, with or without the
	// cookie-name prefix.
	SessionToken string `json:"session_token,omitempty"`
	// RefreshIntervalSeconds of 0 disables periodic refresh.
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
	LookbackHours          int    `json:"lookback_hours"`
	RequestTimeoutSeconds  int    `json:"request_timeout_seconds"`
	APIBaseURL             string `json:"api_base_url,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		RefreshIntervalSeconds: defaultRefreshIntervalSeconds,
		LookbackHours:          defaultLookbackHours,
		RequestTimeoutSeconds:  defaultRequestTimeoutSeconds,
	}
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

func (c Config) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cursorusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cursorusage")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	// An explicit 0 is meaningful here (auto-refresh off); only negative
	// values fall back to the default.
	if cfg.RefreshIntervalSeconds < 0 {
		cfg.RefreshIntervalSeconds = defaultRefreshIntervalSeconds
	}
	if cfg.LookbackHours <= 0 {
		cfg.LookbackHours = defaultLookbackHours
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}

	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	// 0600: the file may carry a session token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveRefreshIntervalTo persists the refresh interval (read-modify-write).
func SaveRefreshIntervalTo(path string, seconds int) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.RefreshIntervalSeconds = seconds
	return SaveTo(path, cfg)
}
