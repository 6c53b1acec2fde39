package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestInit(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.loader.ConfigPath = configPath
	cmd := newInitCmd(a)

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestInitCommandWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "guardian.config.yml")
	outputDir := filepath.Join(dir, "reports")

	output, err := newTestInit(t, configPath, "--output-dir", outputDir)
	if err != nil {
		t.Fatalf("init command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(output, "Wrote "+configPath) {
		t.Fatalf("expected write message, got: %s", output)
	}

	if !strings.Contains(output, "Configuration looks good. Widgets: 4, format: text") {
		t.Fatalf("expected success message, got: %s", output)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "videoTick: 200ms") {
		t.Fatalf("unexpected template:\n%s", data)
	}

	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		t.Fatalf("output directory was not created: %s", outputDir)
	}
}

func TestInitCommandKeepsExistingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "guardian.config.yml")
	custom := []byte("format: json\n")
	if err := os.WriteFile(configPath, custom, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := newTestInit(t, configPath)
	if err != nil {
		t.Fatalf("init command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(output, "Keeping existing") || !strings.Contains(output, "format: json") {
		t.Fatalf("expected existing config to be used, got: %s", output)
	}

	data, _ := os.ReadFile(configPath)
	if !bytes.Equal(data, custom) {
		t.Fatalf("existing config was modified:\n%s", data)
	}
}

func TestInitCommandForceOverwrites(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "guardian.config.yml")
	if err := os.WriteFile(configPath, []byte("format: json\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := newTestInit(t, configPath, "--force")
	if err != nil {
		t.Fatalf("init command failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(output, "format: text") {
		t.Fatalf("expected defaults after overwrite, got: %s", output)
	}
}

func TestInitCommandConfigurationError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "guardian.config.yml")
	if err := os.WriteFile(configPath, []byte("videoFrames: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := newTestInit(t, configPath)
	if err == nil {
		t.Fatalf("expected validation error, got output: %s", output)
	}

	if !strings.Contains(err.Error(), "videoFrames") {
		t.Fatalf("expected videoFrames error, got: %v", err)
	}
}
