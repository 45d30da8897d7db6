package cli

import (
	"fmt"

	"github.com/fmueller/speechtxt/internal/whisper"
)

func (a *appState) runListLanguages() error {
	out := a.outWriter()
	fmt.Fprintln(out, "Supported Whisper languages:")
	for _, lang := range whisper.Languages() {
		fmt.Fprintf(out, "%s: %s\n", lang.Code, lang.Name)
	}
	return nil
}
