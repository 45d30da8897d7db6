package transcript

import (
	"fmt"
	"path/filepath"

	"github.com/fmueller/speechtxt/internal/whisper"
	"go.uber.org/zap"
)

type Builder struct {
	Logger       *zap.Logger
	NewConverter func(ChineseMode) (Converter, error)
}

// Build derives the output document from the request, the engine result and
// the input file on disk. The result is not modified.
func (b Builder) Build(req Request, result whisper.Result) (Document, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := Inspect(req.AudioPath)
	if err != nil {
		logger.Warn("could not read audio for metadata", zap.String("audio", req.AudioPath), zap.Error(err))
	}

	segments, err := b.convertSegments(req.Chinese, result, logger)
	if err != nil {
		return Document{}, err
	}

	return Document{
		Filename:     filepath.Base(req.AudioPath),
		FileSize:     info.Size,
		SHA1:         info.SHA1,
		Language:     result.Language,
		SegmentCount: len(result.Segments),
		Body:         RenderBody(segments, req.Timestamps),
	}, nil
}

func (b Builder) convertSegments(mode ChineseMode, result whisper.Result, logger *zap.Logger) ([]whisper.Segment, error) {
	if mode == ChineseNone {
		return result.Segments, nil
	}
	if result.Language != chineseLanguage {
		logger.Warn("--chinese option ignored (language is not Chinese)", zap.String("language", result.Language))
		return result.Segments, nil
	}

	newConverter := b.NewConverter
	if newConverter == nil {
		newConverter = NewChineseConverter
	}
	cc, err := newConverter(mode)
	if err != nil {
		return nil, err
	}

	logger.Info("converting Chinese output", zap.String("script", string(mode)))
	converted := make([]whisper.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		text, err := cc.Convert(seg.Text)
		if err != nil {
			return nil, fmt.Errorf("convert segment %d to %s: %w", i, mode, err)
		}
		converted[i] = whisper.Segment{Start: seg.Start, End: seg.End, Text: text}
	}
	return converted, nil
}
