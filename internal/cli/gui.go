package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fmueller/speechtxt/internal/gui"
	"github.com/fmueller/speechtxt/internal/transcript"
	"github.com/gin-gonic/gin"
)

func (a *appState) runGUI(ctx context.Context) error {
	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := gui.New(gui.Options{
		Run:             a.guiRunner(),
		DefaultLanguage: a.language,
		Logger:          a.log(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(a.outWriter(), "Open http://%s in your browser (Ctrl+C to stop)\n", a.guiAddr)
	return server.Serve(ctx, a.guiAddr)
}

func (a *appState) guiRunner() gui.Runner {
	return func(ctx context.Context, req transcript.Request) (gui.Outcome, error) {
		transcribeFn := a.transcribeFn
		if transcribeFn == nil {
			transcribeFn = a.transcribeFile
		}

		output, err := transcribeFn(ctx, req)
		if err != nil {
			return gui.Outcome{}, err
		}
		return gui.Outcome{
			OutputPath: output.Path,
			Language:   output.Document.Language,
			Segments:   output.Document.SegmentCount,
			Text:       output.Document.Body,
		}, nil
	}
}
