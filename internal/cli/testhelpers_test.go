package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fmueller/speechtxt/internal/whisper"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	requests []whisper.TranscriptionRequest
	result   whisper.Result
	err      error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, req whisper.TranscriptionRequest) (whisper.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeEngine) calls() []whisper.TranscriptionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]whisper.TranscriptionRequest(nil), f.requests...)
}

func newTestApp(engine *fakeEngine) *appState {
	app := newAppState()
	app.engineFn = func(context.Context) (whisper.Engine, string, error) {
		return engine, "/models/ggml-base.bin", nil
	}
	app.copyFn = func(context.Context, string) error { return nil }
	app.noProgress = true
	return app
}

// runApp executes the root command against an isolated empty config file.
func runApp(t *testing.T, app *appState, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("language: auto\n"), 0o644))

	cmd := newRootCmd(app)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--config", cfgPath, "--no-progress"))

	err := cmd.Execute()
	return out.String(), err
}

func writeAudio(t *testing.T, dir, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, payload, 0o644))
	return path
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func helloWorldResult(language string) whisper.Result {
	return whisper.Result{
		Language: language,
		Text:     "Hello World",
		Segments: []whisper.Segment{
			{Start: 0, End: whisper.Seconds(3.5), Text: " Hello"},
			{Start: whisper.Seconds(3.5), End: whisper.Seconds(7.2), Text: " World"},
		},
	}
}
