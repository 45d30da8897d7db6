package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"SPEECHTXT_MODEL",
	"SPEECHTXT_MODEL_DIR",
	"SPEECHTXT_LANGUAGE",
	"SPEECHTXT_ENGINE",
	"SPEECHTXT_GUI_ADDR",
	"SPEECHTXT_OPENAI_MODEL",
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Model)
	require.Equal(t, "auto", cfg.Language)
	require.Equal(t, EngineLocal, cfg.Engine)
	require.Equal(t, "127.0.0.1:7860", cfg.GUI.Addr)
	require.Equal(t, "whisper-1", cfg.OpenAI.Model)
	require.Empty(t, cfg.ModelDir)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `model: small
language: de
gui:
  addr: 127.0.0.1:9000
`)
	t.Setenv("SPEECHTXT_LANGUAGE", "fr")

	cfg, err := Load(LoadOptions{Path: path, Explicit: true})
	require.NoError(t, err)
	require.Equal(t, "small", cfg.Model)
	require.Equal(t, "fr", cfg.Language)
	require.Equal(t, "127.0.0.1:9000", cfg.GUI.Addr)
	require.Equal(t, EngineLocal, cfg.Engine)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.yaml"), Explicit: true})
	require.Error(t, err)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEECHTXT_ENGINE", "cloud")

	_, err := Load(LoadOptions{})
	require.ErrorContains(t, err, `unknown engine "cloud"`)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dotenv := writeFile(t, ".env", "OPENAI_API_KEY=sk-test\nSPEECHTXT_ENGINE=openai\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("OPENAI_API_KEY")
		_ = os.Unsetenv("SPEECHTXT_ENGINE")
	})

	cfg, err := Load(LoadOptions{DotEnv: []string{dotenv, filepath.Join(t.TempDir(), "absent.env")}})
	require.NoError(t, err)
	require.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	require.Equal(t, EngineOpenAI, cfg.Engine)
}

func TestDumpMasksAPIKey(t *testing.T) {
	t.Parallel()

	cfg := Config{Model: "base", Language: "auto", Engine: EngineOpenAI}
	cfg.OpenAI.APIKey = "sk-secret"

	var out bytes.Buffer
	require.NoError(t, cfg.Dump(&out))
	require.Contains(t, out.String(), "model: base")
	require.Contains(t, out.String(), "engine: openai")
	require.NotContains(t, out.String(), "sk-secret")
	require.Equal(t, "sk-secret", cfg.OpenAI.APIKey)
}

func TestUsageListsEnvironment(t *testing.T) {
	t.Parallel()

	usage := Usage()
	for _, name := range envVars {
		require.Contains(t, usage, name)
	}
}
