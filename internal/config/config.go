// Package config reads and writes the user's preference file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

var DefaultConfigPath = filepath.Join(xdg.ConfigHome, "Chronicle", "config.json")

var (
	ErrUnknownKey = errors.New("config: unknown key")
	ErrLocked     = errors.New("config: file is being written by another process")
)

// Keys as they appear in the JSON file, in viper and in `config set`.
const (
	KeyReportDir   = "report_dir"
	KeyMemberID    = "member_id"
	KeyTeamDir     = "team_dir"
	KeyRepo        = "repo"
	KeyArchiveRoot = "archive_root"
	KeyAPIURL      = "api_url"
	KeyToken       = "token"
)

type Config struct {
	ReportDir   string `json:"report_dir,omitempty"`
	MemberID    string `json:"member_id,omitempty"`
	TeamDir     string `json:"team_dir,omitempty"`
	Repo        string `json:"repo,omitempty"`
	ArchiveRoot string `json:"archive_root,omitempty"`
	APIURL      string `json:"api_url,omitempty"`
	Token       string `json:"token,omitempty"`

	Path string `json:"-"`
}

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	cfg := &Config{Path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("config read %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Update loads the config, applies fn and saves it while holding the file lock.
func Update(path string, fn func(*Config) error) (*Config, error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("config lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer lock.Unlock()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := fn(cfg); err != nil {
		return nil, err
	}
	if err := cfg.save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// save replaces the file atomically.
func (c *Config) save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.Path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("config write: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("config write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("config write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config write: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return fmt.Errorf("config write: %w", err)
	}
	return nil
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		KeyReportDir:   &c.ReportDir,
		KeyMemberID:    &c.MemberID,
		KeyTeamDir:     &c.TeamDir,
		KeyRepo:        &c.Repo,
		KeyArchiveRoot: &c.ArchiveRoot,
		KeyAPIURL:      &c.APIURL,
		KeyToken:       &c.Token,
	}
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, 7)
	for k := range (&Config{}).fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) Get(key string) (string, error) {
	f, ok := c.fields()[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return *f, nil
}

// Set assigns key. An empty value clears it.
func (c *Config) Set(key, value string) error {
	f, ok := c.fields()[key]
	if !ok {
		return fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	*f = strings.TrimSpace(value)
	return nil
}
