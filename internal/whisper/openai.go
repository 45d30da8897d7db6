package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEngine sends the audio to the hosted Whisper API instead of running a
// local model. It needs no model file.
type OpenAIEngine struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

func NewOpenAIEngine(opts OpenAIOptions) (*OpenAIEngine, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai engine requires an API key; set OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = openai.Whisper1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIEngine{client: openai.NewClientWithConfig(cfg), model: model, logger: logger}, nil
}

func (o *OpenAIEngine) Name() string {
	return "openai"
}

func (o *OpenAIEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}

	audioReq := openai.AudioRequest{
		Model:    o.model,
		FilePath: req.AudioPath,
		Prompt:   req.Prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != AutoLanguage {
		audioReq.Language = lang
	}

	o.logger.Debug("calling openai transcription", zap.String("model", o.model), zap.String("audio", req.AudioPath))
	resp, err := o.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return Result{}, fmt.Errorf("openai transcribe failed: %w", err)
	}

	result := Result{
		Language: languageCode(resp.Language),
		Text:     strings.TrimSpace(resp.Text),
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: Seconds(seg.Start),
			End:   Seconds(seg.End),
			Text:  seg.Text,
		})
	}
	return result, nil
}

// languageCode maps the full language name verbose_json reports back to a code.
func languageCode(reported string) string {
	code, err := NormalizeLanguage(reported)
	if err != nil || code == AutoLanguage {
		return strings.ToLower(strings.TrimSpace(reported))
	}
	return code
}
