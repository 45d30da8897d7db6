package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fmueller/speechtxt/internal/platform"
	"go.uber.org/zap"
)

// EnginePathEnv overrides engine discovery with an explicit whisper-cli binary.
const EnginePathEnv = "SPEECHTXT_WHISPER_PATH"

type BundledEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewBundledEngine(logger *zap.Logger) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := LocateEngine()
	if err != nil {
		return nil, err
	}
	return &BundledEngine{Executable: path, Logger: logger}, nil
}

// LocateEngine finds the whisper-cli executable: the env override first, then
// the install layout next to our own binary, then PATH.
func LocateEngine() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnginePathEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return "", fmt.Errorf("%s is not executable: %w", EnginePathEnv, err)
		}
		return override, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve speechtxt executable path: %w", err)
	}

	if path, err := ResolveBundledEnginePath(self); err == nil {
		return path, nil
	}

	if path, err := exec.LookPath(engineBinaryName()); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("whisper engine not found near %s or on PATH; install whisper.cpp's %s or set %s", self, engineBinaryName(), EnginePathEnv)
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("bundled whisper engine not found near %s; expected at ../libexec/whisper/%s", selfExecutable, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	hostTarget := platform.CurrentRuntime().Target()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

func (b *BundledEngine) Name() string {
	return "local"
}

func (b *BundledEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return Result{}, errors.New("model path is required")
	}
	if err := ensureExecutable(b.Executable); err != nil {
		return Result{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("speechtxt-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	args := engineArgs(req, outBase)
	cmd := exec.CommandContext(ctx, b.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	logger.Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return Result{}, classifyEngineError(b.Executable, err, strings.TrimSpace(stderr.String()))
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	return ParseEngineJSON(content)
}

func engineArgs(req TranscriptionRequest, outBase string) []string {
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = AutoLanguage
	}

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-l", lang, "-oj", "-of", outBase, "-np"}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		args = append(args, "--prompt", prompt)
	}
	return args
}

type engineOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseEngineJSON decodes the file whisper-cli writes with -oj. Offsets are
// in milliseconds.
func ParseEngineJSON(content []byte) (Result, error) {
	var out engineOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return Result{}, fmt.Errorf("decode whisper output: %w", err)
	}

	result := Result{
		Language: strings.TrimSpace(out.Result.Language),
		Segments: make([]Segment, 0, len(out.Transcription)),
	}
	for _, item := range out.Transcription {
		result.Segments = append(result.Segments, Segment{
			Start: time.Duration(item.Offsets.From) * time.Millisecond,
			End:   time.Duration(item.Offsets.To) * time.Millisecond,
			Text:  item.Text,
		})
	}
	result.Text = joinSegmentText(result.Segments)

	return result, nil
}

func classifyEngineError(executable string, err error, errText string) error {
	if isMissingSharedLibraryError(errText) {
		return fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); reinstall whisper.cpp or rebuild whisper-cli with BUILD_SHARED_LIBS=OFF", executable, errText)
	}
	if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
		return errors.New("whisper engine crashed with an illegal CPU instruction; " +
			"your CPU may lack required instruction set extensions; " +
			"set " + EnginePathEnv + " to a whisper-cli binary built for your CPU")
	}
	if isCorruptModelError(errText) {
		return fmt.Errorf("whisper engine could not load the model; run `speechtxt --update-model` to fetch a fresh copy (%s)", lastLine(errText))
	}
	return fmt.Errorf("whisper transcribe failed: %w (%s)", err, lastLine(errText))
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}
	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}

func isCorruptModelError(stderr string) bool {
	value := strings.ToLower(stderr)
	return strings.Contains(value, "failed to load model") || strings.Contains(value, "invalid model data")
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndex(text, "\n"); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
