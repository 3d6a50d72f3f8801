package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/chronicle-hq/chronicle/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportDirCommand_SetShowUnset(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	out, err := runCLI(t, newReportDirCmd(), nil, "report-dir", "set", dir, "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(out))
	assert.DirExists(t, dir)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ReportDir)

	out, err = runCLI(t, newReportDirCmd(), nil, "report-dir", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(out))

	out, err = runCLI(t, newReportDirCmd(), nil, "report-dir", "unset", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	cfg, err = config.Load(cfgPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.ReportDir)
}

func TestReportDirCommand_SetCleansPath(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	dir := t.TempDir()

	out, err := runCLI(t, newReportDirCmd(), nil, "report-dir", "set", dir+"/sub/../reports", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports"), strings.TrimSpace(out))
}

func TestReportDirCommand_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	fromEnv := t.TempDir()

	_, err := runCLI(t, newReportDirCmd(), nil, "report-dir", "set", t.TempDir(), "--config", cfgPath)
	require.NoError(t, err)

	t.Setenv("CHRONICLE_REPORT_DIR", fromEnv)
	out, err := runCLI(t, newReportDirCmd(), nil, "report-dir", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, fromEnv, strings.TrimSpace(out))
}

func TestReportDirCommand_SetRequiresPath(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")

	_, err := runCLI(t, newReportDirCmd(), nil, "report-dir", "set", "--config", cfgPath)
	assert.Error(t, err)
	assert.NoFileExists(t, cfgPath)
}
