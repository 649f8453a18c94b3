package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Settings represents the application configuration persisted to disk.
// User records themselves are never persisted; only server, Trakt, and
// logging configuration live here.
type Settings struct {
	Server ServerSettings `json:"server"`
	Trakt  TraktSettings  `json:"trakt"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TraktSettings defines the Trakt application credentials and endpoints used
// for OAuth and data fetching.
type TraktSettings struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectUri"`
	APIBase      string `json:"apiBase"`
	WebBase      string `json:"webBase"`
	APIVersion   string `json:"apiVersion"`
}

// HasCredentials reports whether a client id and secret are configured.
func (t TraktSettings) HasCredentials() bool {
	return strings.TrimSpace(t.ClientID) != "" && strings.TrimSpace(t.ClientSecret) != ""
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

const (
	defaultAPIBase    = "https://api.trakt.tv"
	defaultWebBase    = "https://trakt.tv"
	defaultAPIVersion = "2"
)

// DefaultSettings returns the settings written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Trakt: TraktSettings{
			RedirectURI: "http://localhost:8080/auth/trakt/callback",
			APIBase:     defaultAPIBase,
			WebBase:     defaultWebBase,
			APIVersion:  defaultAPIVersion,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxAge:     14,
			MaxBackups: 3,
		},
	}
}

// Manager loads and persists settings to a JSON file. The filesystem is
// injectable so tests can run against an in-memory one.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// EnsureDir ensures the parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing. Blank Trakt
// endpoint fields are filled with defaults so older config files keep
// working.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := m.fs.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	if strings.TrimSpace(s.Trakt.APIBase) == "" {
		s.Trakt.APIBase = defaultAPIBase
	}
	if strings.TrimSpace(s.Trakt.WebBase) == "" {
		s.Trakt.WebBase = defaultWebBase
	}
	if strings.TrimSpace(s.Trakt.APIVersion) == "" {
		s.Trakt.APIVersion = defaultAPIVersion
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}

	return m.fs.Rename(tmp, m.path)
}
