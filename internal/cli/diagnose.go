package cli

import (
	"context"
	"os"

	"github.com/fmueller/speechtxt/internal/diagnostics"
	"github.com/fmueller/speechtxt/internal/version"
	"golang.org/x/term"
)

func (a *appState) runDiagnose(ctx context.Context) error {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return err
	}

	collector := diagnostics.Collector{
		Version:  version.Long(),
		ModelRef: a.model,
		ModelDir: modelDir,
	}
	if a.cfg != nil {
		collector.OpenAIKey = a.cfg.OpenAI.APIKey
	}

	report := collector.Collect(ctx)
	colored := !a.jsonLogs && a.out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	return report.Render(a.outWriter(), colored)
}
