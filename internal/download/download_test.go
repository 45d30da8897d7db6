package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sha256Hex(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func TestVerifyFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "payload.bin")
	payload := []byte("speechtxt")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	require.NoError(t, VerifyFileChecksum(path, sha256Hex(payload)))
	require.NoError(t, VerifyFileChecksum(path, ""))
	require.ErrorIs(t, VerifyFileChecksum(path, "deadbeef"), ErrChecksumMismatch)
}

func TestDownloadFileRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	payload := []byte("ggml-model")
	var calls atomic.Int32
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "models", "ggml-base.bin")
	err := DownloadFile(context.Background(), Options{
		URL:            server.URL,
		Destination:    destination,
		ExpectedSHA256: sha256Hex(payload),
		Backoff:        time.Millisecond,
		NoProgress:     true,
	})
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, userAgent, agent.Load())

	onDisk, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, payload, onDisk)
	require.NoFileExists(t, destination+".part")
}

func TestDownloadFileRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tampered"))
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "ggml-base.bin")
	err := DownloadFile(context.Background(), Options{
		URL:            server.URL,
		Destination:    destination,
		ExpectedSHA256: sha256Hex([]byte("original")),
		Retries:        2,
		Backoff:        time.Millisecond,
		NoProgress:     true,
	})
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.NoFileExists(t, destination)
	require.NoFileExists(t, destination+".part")
}

func TestDownloadFileStopsOnCancel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DownloadFile(ctx, Options{
		URL:         server.URL,
		Destination: filepath.Join(t.TempDir(), "ggml-base.bin"),
		Retries:     5,
		Backoff:     time.Hour,
		NoProgress:  true,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEnsureSkipsVerifiedFile(t *testing.T) {
	t.Parallel()

	payload := []byte("ggml-model")
	destination := filepath.Join(t.TempDir(), "ggml-base.bin")
	require.NoError(t, os.WriteFile(destination, payload, 0o644))

	outcome, err := Ensure(context.Background(), Options{
		URL:            "http://127.0.0.1:0/unreachable",
		Destination:    destination,
		ExpectedSHA256: sha256Hex(payload),
		NoProgress:     true,
	})
	require.NoError(t, err)
	require.Equal(t, AlreadyPresent, outcome)
}

func TestEnsureReplacesCorruptFile(t *testing.T) {
	t.Parallel()

	payload := []byte("ggml-model")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	destination := filepath.Join(t.TempDir(), "ggml-base.bin")
	require.NoError(t, os.WriteFile(destination, []byte("truncated"), 0o644))

	outcome, err := Ensure(context.Background(), Options{
		URL:            server.URL,
		Destination:    destination,
		ExpectedSHA256: sha256Hex(payload),
		NoProgress:     true,
	})
	require.NoError(t, err)
	require.Equal(t, Downloaded, outcome)

	onDisk, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, payload, onDisk)
}
