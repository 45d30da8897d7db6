package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fmueller/speechtxt/internal/clipboard"
	"github.com/fmueller/speechtxt/internal/config"
	"github.com/fmueller/speechtxt/internal/transcript"
	"github.com/fmueller/speechtxt/internal/whisper"
	"go.uber.org/zap"
)

type transcriptionOutput struct {
	Path     string
	Document transcript.Document
}

// transcribeFile runs one validated request end to end: engine, formatting
// and the atomic write next to the input.
func (a *appState) transcribeFile(ctx context.Context, req transcript.Request) (transcriptionOutput, error) {
	engineFn := a.engineFn
	if engineFn == nil {
		engineFn = a.newEngine
	}
	engine, modelPath, err := engineFn(ctx)
	if err != nil {
		return transcriptionOutput{}, err
	}

	a.log().Info("transcribing",
		zap.String("audio", req.AudioPath),
		zap.String("engine", engine.Name()),
		zap.String("model", modelPath),
		zap.String("language", req.Language),
	)
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing "+filepath.Base(req.AudioPath))
	started := time.Now()

	result, err := engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: req.AudioPath,
		ModelPath: modelPath,
		Language:  req.Language,
		Prompt:    whisper.InitialPrompt(req.AudioPath),
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)))
		return transcriptionOutput{}, fmt.Errorf("transcription failed: %w", err)
	}
	a.log().Info("transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("language", result.Language),
		zap.Int("segments", len(result.Segments)),
	)

	doc, err := transcript.Builder{Logger: a.log()}.Build(req, result)
	if err != nil {
		return transcriptionOutput{}, err
	}

	outPath := transcript.OutputPath(req.AudioPath)
	if err := transcript.Write(outPath, doc); err != nil {
		return transcriptionOutput{}, fmt.Errorf("write %s: %w", outPath, err)
	}
	return transcriptionOutput{Path: outPath, Document: doc}, nil
}

// newEngine returns the configured engine and, for the local engine, the
// model file it will load.
func (a *appState) newEngine(_ context.Context) (whisper.Engine, string, error) {
	switch a.engine {
	case config.EngineOpenAI:
		opts := whisper.OpenAIOptions{Logger: a.log()}
		if a.cfg != nil {
			opts.APIKey = a.cfg.OpenAI.APIKey
			opts.BaseURL = a.cfg.OpenAI.BaseURL
			opts.Model = a.cfg.OpenAI.Model
		}
		engine, err := whisper.NewOpenAIEngine(opts)
		if err != nil {
			return nil, "", err
		}
		return engine, opts.Model, nil

	case config.EngineLocal, "":
		modelDir, err := a.modelStorageDir()
		if err != nil {
			return nil, "", err
		}
		model, err := whisper.Require(a.model, modelDir)
		if err != nil {
			return nil, "", err
		}
		engine, err := whisper.NewBundledEngine(a.log())
		if err != nil {
			return nil, "", err
		}
		return engine, model.Path, nil

	default:
		return nil, "", fmt.Errorf("unknown engine %q (expected %s or %s)", a.engine, config.EngineLocal, config.EngineOpenAI)
	}
}

// copyText never fails the command: the file is already written.
func (a *appState) copyText(ctx context.Context, text string) {
	copyFn := a.copyFn
	if copyFn == nil {
		copyFn = clipboard.CopyText
	}

	if err := copyFn(ctx, text); err != nil {
		if errors.Is(err, clipboard.ErrUnavailable) {
			a.log().Warn("clipboard tool unavailable; transcription left in the output file")
			return
		}
		a.log().Warn("failed to copy transcription to clipboard", zap.Error(err))
		return
	}
	a.log().Info("transcription copied to clipboard")
}
