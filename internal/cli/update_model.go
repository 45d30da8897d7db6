package cli

import (
	"context"
	"fmt"

	"github.com/fmueller/speechtxt/internal/download"
	"github.com/fmueller/speechtxt/internal/whisper"
	"go.uber.org/zap"
)

func (a *appState) runUpdateModel(ctx context.Context) error {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return err
	}
	if resolved.IsCustomPath {
		return fmt.Errorf("--update-model expects a named model (%v); got custom path %s", whisper.ModelNames(), resolved.Path)
	}

	a.log().Info("updating model", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
	outcome, err := download.Ensure(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		Description:    "downloading " + resolved.Name,
		NoProgress:     !a.progressEnabled(),
		Logger:         a.log(),
	})
	if err != nil {
		return fmt.Errorf("download model %s: %w", resolved.Name, err)
	}

	if outcome == download.AlreadyPresent {
		fmt.Fprintf(a.outWriter(), "Model %s already up to date: %s\n", resolved.Name, resolved.Path)
		return nil
	}
	fmt.Fprintf(a.outWriter(), "Model updated: %s\n", resolved.Path)
	return nil
}
