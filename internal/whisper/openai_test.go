package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOpenAIEngineRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIEngine(OpenAIOptions{})
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestOpenAIEngineMapsVerboseJSON(t *testing.T) {
	t.Parallel()

	var gotLanguage, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotLanguage = r.FormValue("language")
		gotFormat = r.FormValue("response_format")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"task": "transcribe",
			"language": "french",
			"duration": 3.0,
			"text": "Bonjour. Comment allez-vous",
			"segments": [
				{"id": 0, "start": 0.0, "end": 1.5, "text": " Bonjour."},
				{"id": 1, "start": 1.5, "end": 3.0, "text": " Comment allez-vous"}
			]
		}`))
	}))
	defer server.Close()

	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))

	engine, err := NewOpenAIEngine(OpenAIOptions{APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := engine.Transcribe(context.Background(), TranscriptionRequest{AudioPath: audio, Language: "fr"})
	require.NoError(t, err)
	require.Equal(t, "fr", gotLanguage)
	require.Equal(t, "verbose_json", gotFormat)
	require.Equal(t, "fr", result.Language)
	require.Equal(t, "Bonjour. Comment allez-vous", result.Text)
	require.Len(t, result.Segments, 2)
	require.Equal(t, 1500*time.Millisecond, result.Segments[1].Start)
	require.Equal(t, 3*time.Second, result.Segments[1].End)
}

func TestOpenAIEngineOmitsAutoLanguage(t *testing.T) {
	t.Parallel()

	var sawLanguage bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, sawLanguage = r.MultipartForm.Value["language"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"language": "english", "text": "hi", "segments": []}`))
	}))
	defer server.Close()

	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))

	engine, err := NewOpenAIEngine(OpenAIOptions{APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := engine.Transcribe(context.Background(), TranscriptionRequest{AudioPath: audio, Language: AutoLanguage})
	require.NoError(t, err)
	require.False(t, sawLanguage)
	require.Equal(t, "en", result.Language)
}

func TestOpenAIEngineSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))

	engine, err := NewOpenAIEngine(OpenAIOptions{APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = engine.Transcribe(context.Background(), TranscriptionRequest{AudioPath: audio})
	require.ErrorContains(t, err, "openai transcribe failed")
}
