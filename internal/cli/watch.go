package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fmueller/speechtxt/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(app *appState) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Transcribe MP3 files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWatch(cmd.Context(), args[0], debounce)
		},
	}

	cmd.Flags().StringVar(&app.language, "language", "", "Language code or auto (default from config, else auto)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Wait this long after the last write before transcribing")
	return cmd
}

func (a *appState) runWatch(ctx context.Context, dir string, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(dir, a.watchHandler(), watch.Options{Debounce: debounce, Logger: a.log()})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.outWriter(), "Watching %s for MP3 files (Ctrl+C to stop)\n", dir)
	<-w.Done()
	return nil
}

func (a *appState) watchHandler() watch.Handler {
	return func(ctx context.Context, path string) error {
		req, err := a.newRequest(path, a.language)
		if err != nil {
			return err
		}

		transcribeFn := a.transcribeFn
		if transcribeFn == nil {
			transcribeFn = a.transcribeFile
		}
		output, err := transcribeFn(ctx, req)
		if err != nil {
			return err
		}

		a.log().Info("transcription written", zap.String("audio", path), zap.String("output", output.Path))
		fmt.Fprintf(a.outWriter(), "Output written to: %s\n", output.Path)
		return nil
	}
}
