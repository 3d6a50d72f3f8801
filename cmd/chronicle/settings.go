package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "CHRONICLE"

// legacyEnv are the variable names the old push script read its profile from.
var legacyEnv = map[string]string{
	config.KeyToken:    "GITHUB_PAT_TEAM_HUB",
	config.KeyMemberID: "MEMBER_ID",
	config.KeyTeamDir:  "TEAM_DIR",
}

// flagKeys maps command flags to config keys.
var flagKeys = map[string]string{
	"report-dir":   config.KeyReportDir,
	"member":       config.KeyMemberID,
	"team":         config.KeyTeamDir,
	"repo":         config.KeyRepo,
	"archive-root": config.KeyArchiveRoot,
	"api-url":      config.KeyAPIURL,
	"token":        config.KeyToken,
}

// resolveConfigPath determines which config file path to use, honoring (in order):
// 1) An explicitly set --config flag
// 2) CHRONICLE_CONFIG environment variable
// 3) The default path
func resolveConfigPath(cmd *cobra.Command) string {
	if cfgFlag := cmd.Flag("config"); cfgFlag != nil && cfgFlag.Changed {
		return cfgFlag.Value.String()
	}

	if envPath := os.Getenv(envPrefix + "_CONFIG"); envPath != "" {
		return envPath
	}

	return config.DefaultConfigPath
}

// loadSettings returns the effective profile: flags over env over the config
// file. The returned Config's Path is the config file in use.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path := resolveConfigPath(cmd)
	loadDotEnv(path)

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	fileValues := make(map[string]any)
	for _, key := range config.Keys() {
		if val, _ := file.Get(key); val != "" {
			fileValues[key] = val
		}
	}
	if err := v.MergeConfigMap(fileValues); err != nil {
		return nil, fmt.Errorf("config merge '%s': %w", path, err)
	}

	// Set up environment variables
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), legacy); err != nil {
			return nil, err
		}
	}

	// Bind flags to viper
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := &config.Config{Path: path}
	for _, key := range config.Keys() {
		if err := cfg.Set(key, v.GetString(key)); err != nil {
			return nil, err
		}
	}

	slog.Debug("settings loaded",
		"config", path,
		"member", cfg.MemberID,
		"team", cfg.TeamDir,
		"token", utils.MaskSecret(cfg.Token),
	)
	return cfg, nil
}

// loadDotEnv reads `.env` from the working directory and from next to the
// config file. Variables already in the environment win.
func loadDotEnv(configPath string) {
	candidates := []string{".env", filepath.Join(filepath.Dir(configPath), ".env")}

	var files []string
	for _, f := range candidates {
		if utils.FileExists(f) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return
	}

	if err := godotenv.Load(files...); err != nil {
		slog.Warn("dotenv load failed", "files", files, "error", err)
	}
}
