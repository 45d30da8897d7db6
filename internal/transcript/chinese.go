package transcript

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
)

const chineseLanguage = "zh"

type Converter interface {
	Convert(text string) (string, error)
}

// NewChineseConverter returns an OpenCC converter for the requested script,
// or nil when no conversion was asked for.
func NewChineseConverter(mode ChineseMode) (Converter, error) {
	var config string
	switch mode {
	case ChineseNone:
		return nil, nil
	case ChineseSimplified:
		config = "t2s"
	case ChineseTraditional:
		config = "s2t"
	default:
		return nil, fmt.Errorf("unknown chinese mode %q", mode)
	}

	cc, err := opencc.New(config)
	if err != nil {
		return nil, fmt.Errorf("load opencc %s: %w", config, err)
	}
	return cc, nil
}
